package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/toolkits/pkg/logger"
	"google.golang.org/grpc"

	"sharedptr/config"
	"sharedptr/infra/conn"
	"sharedptr/infra/journal"
	"sharedptr/infra/kafka"
	"sharedptr/infra/memory"
	"sharedptr/jobs/broadcaster"
	"sharedptr/service"
	"sharedptr/shared"
)

func main() {
	configFile := flag.String("config", "", "path to a TOML config file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Log.Logger()); err != nil {
		fmt.Fprintln(os.Stderr, "logger init:", err)
		os.Exit(1)
	}

	err = run(cfg)
	if err != nil {
		logger.Errorf("[demo] %v", err)
	}
	logger.Close()
	if err != nil {
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	// ---------------- Journal ----------------

	j, err := journal.Open(journal.Config{
		Dir:      cfg.Journal.Dir,
		InMemory: cfg.Journal.InMemory,
	})
	if err != nil {
		return err
	}
	jh := shared.NewWithDeleter(j, shared.Closer[journal.Journal](func(err error) {
		logger.Warningf("[demo] %v", err)
	}))
	defer jh.Release()

	// ---------------- Walkthroughs ----------------

	walkthrough(jh)
	pooled(cfg.Memory)
	if err := connections(cfg.GRPC); err != nil {
		return err
	}

	// ---------------- Broadcast ----------------

	return broadcast(cfg.Kafka, jh.Clone())
}

// walkthrough exercises copy, move, reset and move-assign on an int,
// journaling every release.
func walkthrough(jh *shared.Handle[journal.Journal]) {
	rec := journal.Recording[int](jh, "walkthrough", nil)
	defer rec.Release()

	v := 42
	p1 := shared.NewWithDeleter[int](&v, rec)
	defer p1.Release()
	logger.Infof("p1 count: %d, value: %d", p1.Count(), *p1.Get())

	p2 := p1.Clone()
	defer p2.Release()
	logger.Infof("p1 count after copy: %d", p1.Count())
	logger.Infof("p2 count after copy: %d", p2.Count())

	p3 := p1.Move()
	defer p3.Release()
	logger.Infof("p3 count after move: %d", p3.Count())
	logger.Infof("p1 count after move: %d", p1.Count())

	w := 99
	p2.ResetTo(&w)
	logger.Infof("p2 reset to new value: %d, count: %d", *p2.Get(), p2.Count())

	p4 := shared.Empty[int]()
	defer p4.Release()
	p4.MoveFrom(p2)
	logger.Infof("p4 after move-assign: %d, count: %d", *p4.Get(), p4.Count())

	p4.Reset()
	logger.Infof("p4 after reset: %d", p4.Count())

	if _, err := p4.Deref(); err != nil {
		logger.Infof("p4 deref: %v", err)
	}
}

type buffer struct {
	data []byte
}

// pooled shows a pooled value outliving its last owner while a reader
// still holds a raw pointer to it.
func pooled(cfg config.MemoryConfig) {
	pool := memory.NewPool(func() *buffer {
		return &buffer{data: make([]byte, 0, 4096)}
	}, func(b *buffer) {
		b.data = b.data[:0]
	})
	ring := memory.NewRetireRing(cfg.RetireRingSize)
	retirer := memory.NewRetirer[buffer](ring)
	reader := memory.NewReader()

	h := memory.MakeWithDeleter[buffer](pool, retirer, func(b *buffer) {
		b.data = append(b.data, "hello"...)
	})

	reader.Begin()
	raw := h.Get()
	h.Release()
	n := memory.AdvanceEpochAndReclaim(ring, pool, reader.Epoch())
	logger.Infof("[memory] released while reading: reclaimed=%d parked=%d data=%q", n, ring.Len(), raw.data)
	reader.End()

	n = memory.AdvanceEpochAndReclaim(ring, pool, reader.Epoch())
	logger.Infof("[memory] after read section: reclaimed=%d parked=%d dropped=%d stats=%+v",
		n, ring.Len(), retirer.Dropped(), pool.Stats())
}

// connections shares one gRPC connection per target between borrowers.
func connections(cfg config.GRPCConfig) error {
	if len(cfg.Targets) == 0 {
		return nil
	}
	reg := service.NewRegistry(func(target string) (*shared.Handle[grpc.ClientConn], error) {
		return conn.Dial(target)
	})
	defer reg.Close()

	for _, target := range cfg.Targets {
		a, err := reg.Acquire(target)
		if err != nil {
			return err
		}
		b, err := reg.Acquire(target)
		if err != nil {
			a.Release()
			return err
		}
		logger.Infof("[conn] %s owners=%d state=%s", target, reg.Owners(target), a.Get().GetState())
		a.Release()
		b.Release()
	}
	return nil
}

// broadcast ships pending journal records once. It owns jh.
func broadcast(cfg config.KafkaConfig, jh *shared.Handle[journal.Journal]) error {
	defer jh.Release()
	j := jh.Get()

	pending := 0
	if err := j.ScanByState(journal.StateNew, func(journal.Record) error {
		pending++
		return nil
	}); err != nil {
		return err
	}
	if len(cfg.Brokers) == 0 {
		logger.Infof("[demo] no kafka brokers configured, %d releases stay in the journal", pending)
		return nil
	}

	interval, err := cfg.BroadcastInterval()
	if err != nil {
		return err
	}
	bcfg := broadcaster.Config{Interval: interval, MaxRetries: cfg.MaxRetries}

	var pub broadcaster.Publisher
	switch cfg.Client {
	case "kafka-go":
		ph := kafka.NewShared(cfg.Brokers, cfg.Topic)
		defer ph.Release()
		pub = ph.Get()
	default:
		ph, err := broadcaster.DialSarama(cfg.Brokers, cfg.Topic)
		if err != nil {
			return err
		}
		defer ph.Release()
		pub = ph.Get()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	acked, err := broadcaster.New(j, pub, bcfg).ReplayOnce(ctx)
	if err != nil {
		return err
	}
	logger.Infof("[demo] published %d of %d releases via %s", acked, pending, cfg.Client)
	return nil
}
