package bus

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"go.uber.org/zap"
)

// Command is a state-changing request. Validate runs before dispatch,
// so handlers only ever see well-formed commands.
type Command interface {
	Validate() error
}

// CommandHandler executes a single command type.
type CommandHandler interface {
	Handle(ctx context.Context, cmd Command) error
}

// CommandHandlerFunc adapts a plain function to CommandHandler.
type CommandHandlerFunc func(ctx context.Context, cmd Command) error

func (f CommandHandlerFunc) Handle(ctx context.Context, cmd Command) error {
	return f(ctx, cmd)
}

// CommandBus routes commands to handlers keyed by the command's
// concrete type.
type CommandBus struct {
	mu       sync.RWMutex
	handlers map[reflect.Type]CommandHandler
}

// NewCommandBus creates an empty command bus.
func NewCommandBus() *CommandBus {
	return &CommandBus{handlers: make(map[reflect.Type]CommandHandler)}
}

// Register binds a handler to the command's concrete type. A second
// registration for the same type is a wiring mistake and fails loudly.
func (b *CommandBus) Register(cmd Command, handler CommandHandler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	t := reflect.TypeOf(cmd)
	if _, dup := b.handlers[t]; dup {
		return fmt.Errorf("handler already registered for command type %s", t.Name())
	}
	b.handlers[t] = handler
	return nil
}

// Send validates the command and dispatches it to its handler.
func (b *CommandBus) Send(ctx context.Context, cmd Command) error {
	if err := cmd.Validate(); err != nil {
		return fmt.Errorf("command validation failed: %w", err)
	}

	b.mu.RLock()
	handler, ok := b.handlers[reflect.TypeOf(cmd)]
	b.mu.RUnlock()
	if !ok {
		return fmt.Errorf("no handler registered for command type %T", cmd)
	}

	if err := handler.Handle(ctx, cmd); err != nil {
		return fmt.Errorf("command handler failed: %w", err)
	}
	return nil
}

// Middleware wraps a command handler with cross-cutting behavior.
type Middleware func(next CommandHandler) CommandHandler

// Pipeline composes middleware around a handler. The first middleware
// passed to NewPipeline is the outermost.
type Pipeline struct {
	middlewares []Middleware
}

// NewPipeline creates a middleware pipeline.
func NewPipeline(middlewares ...Middleware) *Pipeline {
	return &Pipeline{middlewares: middlewares}
}

// Execute wraps the handler in the pipeline's middleware.
func (p *Pipeline) Execute(handler CommandHandler) CommandHandler {
	for i := len(p.middlewares) - 1; i >= 0; i-- {
		handler = p.middlewares[i](handler)
	}
	return handler
}

// LoggingMiddleware logs every command with its outcome.
func LoggingMiddleware(logger *zap.Logger) Middleware {
	return func(next CommandHandler) CommandHandler {
		return CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
			name := reflect.TypeOf(cmd).Name()
			err := next.Handle(ctx, cmd)
			if err != nil {
				logger.Warn("command failed",
					zap.String("command", name),
					zap.Error(err))
				return err
			}
			logger.Debug("command handled", zap.String("command", name))
			return nil
		})
	}
}
