package journal

import (
	"os"
	"testing"

	"github.com/toolkits/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(logger.LogConfig{Type: "stderr", Level: "WARNING"}); err != nil {
		panic(err)
	}
	code := m.Run()
	logger.Close()
	os.Exit(code)
}
