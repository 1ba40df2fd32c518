package main

import (
	"context"
	"log"
	"strings"
	"time"

	"ideaforge-backend/infrastructure/config"
	"ideaforge-backend/infrastructure/di"
	"ideaforge-backend/interfaces/http/rest"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	chiadapter "github.com/awslabs/aws-lambda-go-api-proxy/chi"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

var (
	// chiLambda wraps the Chi router for AWS Lambda integration
	chiLambda *chiadapter.ChiLambdaV2

	// container holds the dependency injection container
	container *di.Container

	// coldStart tracks whether this is a cold start invocation
	coldStart = true

	// coldStartTime records when the cold start began
	coldStartTime time.Time
)

// init runs during cold start
func init() {
	coldStartTime = time.Now()
	log.Println("Lambda cold start initiated")

	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, err = di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	// No refresh endpoint in Lambda; API Gateway's authorizer owns the
	// token lifecycle there
	router := rest.NewRouter(
		container.CommandBus,
		container.QueryBus,
		container.CreateIdea,
		container.RevalidateIdea,
		container.JWTValidator,
		nil,
		container.Logger,
	)

	handler := router.Setup()

	chiRouter, ok := handler.(*chi.Mux)
	if !ok {
		log.Fatal("Failed to cast handler to chi.Mux")
	}
	chiLambda = chiadapter.NewV2(chiRouter)

	log.Printf("Lambda cold start completed in %v", time.Since(coldStartTime))
}

// Handler is the Lambda function handler. API Gateway's JWT authorizer
// validates tokens before invoking the function, so the authorizer
// claims get translated into the user context headers the in-process
// auth middleware expects.
func Handler(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	if req.Headers == nil {
		req.Headers = make(map[string]string)
	}

	var userID string
	if auth := req.RequestContext.Authorizer; auth != nil && auth.JWT != nil {
		claims := auth.JWT.Claims
		if sub := claims["sub"]; sub != "" {
			userID = sub
			req.Headers["X-API-Gateway-Authorized"] = "true"
			req.Headers["X-User-ID"] = sub
			if email := claims["email"]; email != "" {
				req.Headers["X-User-Email"] = email
			}
			if roles := claims["roles"]; roles != "" {
				req.Headers["X-User-Roles"] = strings.Trim(roles, "[]")
			}
		}
	}

	// The DynamoDB-backed limiter holds across invocations; it fails
	// open on store errors so an outage never blocks traffic
	if userID != "" && container != nil {
		allowed, limitErr := container.RateLimiter.Allow(ctx, userID)
		if limitErr != nil {
			container.Logger.Warn("Rate limiter degraded", zap.Error(limitErr))
		}
		if !allowed {
			return events.APIGatewayV2HTTPResponse{
				StatusCode: 429,
				Headers:    map[string]string{"Content-Type": "application/json"},
				Body:       `{"error":true,"message":"Rate limit exceeded","code":429}`,
			}, nil
		}
	}

	resp, err := chiLambda.ProxyWithContextV2(ctx, req)

	if resp.Headers == nil {
		resp.Headers = make(map[string]string)
	}

	if userID != "" && container != nil {
		if headerErr := container.RateLimiter.SetHeaders(ctx, userID, resp.Headers); headerErr != nil {
			container.Logger.Debug("Failed to set rate limit headers", zap.Error(headerErr))
		}
	}

	if coldStart {
		resp.Headers["X-Cold-Start"] = "true"
		resp.Headers["X-Cold-Start-Duration"] = time.Since(coldStartTime).String()
		coldStart = false
	} else {
		resp.Headers["X-Cold-Start"] = "false"
	}

	if req.RequestContext.RequestID != "" {
		resp.Headers["X-Request-ID"] = req.RequestContext.RequestID
	}

	if resp.StatusCode >= 500 && container != nil && container.Logger != nil {
		container.Logger.Error("Lambda error response",
			zap.String("method", req.RequestContext.HTTP.Method),
			zap.String("path", req.RequestContext.HTTP.Path),
			zap.String("request_id", req.RequestContext.RequestID),
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", resp.Body),
		)
	}

	return resp, err
}

// main is the entry point for the Lambda function
func main() {
	lambda.Start(Handler)
}
