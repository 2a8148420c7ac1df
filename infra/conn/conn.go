// Package conn shares gRPC client connections between components through
// shared handles. The connection is closed by its last owner.
package conn

import (
	"github.com/pkg/errors"
	"github.com/toolkits/pkg/logger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"sharedptr/shared"
)

// Dial creates a client connection to target. It does not wait for the
// connection to come up. Without a credentials option the connection is
// insecure.
func Dial(target string, opts ...grpc.DialOption) (*shared.Handle[grpc.ClientConn], error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	cc, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s", target)
	}
	return Adopt(cc), nil
}

// Adopt takes ownership of an existing connection.
func Adopt(cc *grpc.ClientConn) *shared.Handle[grpc.ClientConn] {
	target := ""
	if cc != nil {
		target = cc.Target()
	}
	return shared.NewWithDeleter(cc, shared.Closer[grpc.ClientConn](func(err error) {
		logger.Warningf("[conn] %s: %v", target, err)
	}))
}
