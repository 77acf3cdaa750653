// Package server runs the arena's long-lived components: it starts them in
// order, watches for a termination signal or a failing component, and stops
// them in reverse order.
package server

import (
	"context"
	"fmt"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Service is a long-running component that can be started and stopped.
type Service interface {
	// Start runs the service and blocks until it is stopped or fails.
	Start() error
	// Stop makes a blocked Start return.
	Stop()
}

// FuncService adapts a start/stop function pair into the Service interface.
type FuncService struct {
	StartFn func() error
	StopFn  func()
}

// Start calls the underlying start function.
func (f *FuncService) Start() error { return f.StartFn() }

// Stop calls the underlying stop function.
func (f *FuncService) Stop() { f.StopFn() }

// Periodic is a Service that calls Fn every Interval until stopped. It backs
// the database and cache health checks.
type Periodic struct {
	Interval time.Duration
	Fn       func(ctx context.Context)
	// OnStop runs once after the loop exits; may be nil.
	OnStop func()

	once sync.Once
	ctx  context.Context
	stop context.CancelFunc
}

// NewPeriodic creates a Periodic service.
//
// Precondition: interval > 0 and fn is non-nil.
func NewPeriodic(interval time.Duration, fn func(ctx context.Context), onStop func()) *Periodic {
	p := &Periodic{Interval: interval, Fn: fn, OnStop: onStop}
	p.init()
	return p
}

func (p *Periodic) init() {
	p.once.Do(func() { p.ctx, p.stop = context.WithCancel(context.Background()) })
}

// Start implements Service.
func (p *Periodic) Start() error {
	p.init()
	t := time.NewTicker(p.Interval)
	defer t.Stop()
	for {
		select {
		case <-p.ctx.Done():
			if p.OnStop != nil {
				p.OnStop()
			}
			return nil
		case <-t.C:
			p.Fn(p.ctx)
		}
	}
}

// Stop implements Service.
func (p *Periodic) Stop() {
	p.init()
	p.stop()
}

// Lifecycle manages the startup and shutdown of multiple services.
// Services are started in order and stopped in reverse order.
type Lifecycle struct {
	logger   *zap.Logger
	services []namedService
	mu       sync.Mutex
}

type namedService struct {
	name    string
	service Service
	done    chan struct{}
}

// NewLifecycle creates a new Lifecycle manager.
//
// Precondition: logger must be non-nil.
func NewLifecycle(logger *zap.Logger) *Lifecycle {
	return &Lifecycle{logger: logger}
}

// Add registers a named service. Services are started in the order added.
//
// Precondition: name must be non-empty; svc must be non-nil.
func (l *Lifecycle) Add(name string, svc Service) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.services = append(l.services, namedService{name: name, service: svc})
}

// Run starts all services and blocks until SIGINT/SIGTERM, ctx cancellation,
// or a service failure. Services are then stopped in reverse order.
//
// Postcondition: every service is stopped when Run returns. The error is the
// first service failure, or nil on a signal or cancellation.
func (l *Lifecycle) Run(ctx context.Context) error {
	start := time.Now()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	l.mu.Lock()
	services := make([]namedService, len(l.services))
	copy(services, l.services)
	l.mu.Unlock()

	errCh := make(chan error, len(services))
	for i := range services {
		ns := &services[i]
		ns.done = make(chan struct{})
		go func() {
			defer close(ns.done)
			l.logger.Info("starting service", zap.String("service", ns.name))
			svcStart := time.Now()
			if err := ns.service.Start(); err != nil {
				l.logger.Error("service failed",
					zap.String("service", ns.name),
					zap.Error(err),
					zap.Duration("uptime", time.Since(svcStart)),
				)
				errCh <- fmt.Errorf("service %s: %w", ns.name, err)
			}
		}()
	}

	l.logger.Info("all services started",
		zap.Int("count", len(services)),
		zap.Duration("startup", time.Since(start)),
	)

	var runErr error
	select {
	case <-ctx.Done():
		l.logger.Info("shutting down", zap.NamedError("cause", context.Cause(ctx)))
	case runErr = <-errCh:
		l.logger.Error("service error, shutting down", zap.Error(runErr))
	}

	l.shutdown(services)

	l.logger.Info("shutdown complete", zap.Duration("total_uptime", time.Since(start)))
	return runErr
}

// stopWait bounds how long shutdown waits for one service's Start to return.
const stopWait = 10 * time.Second

func (l *Lifecycle) shutdown(services []namedService) {
	shutdownStart := time.Now()
	for i := len(services) - 1; i >= 0; i-- {
		ns := services[i]
		svcStart := time.Now()
		l.logger.Info("stopping service", zap.String("service", ns.name))
		ns.service.Stop()
		select {
		case <-ns.done:
		case <-time.After(stopWait):
			l.logger.Warn("service did not stop in time", zap.String("service", ns.name))
		}
		l.logger.Info("service stopped",
			zap.String("service", ns.name),
			zap.Duration("elapsed", time.Since(svcStart)),
		)
	}
	l.logger.Info("all services stopped",
		zap.Duration("shutdown_elapsed", time.Since(shutdownStart)),
	)
}
