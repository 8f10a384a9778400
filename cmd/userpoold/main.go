// Command userpoold runs the local user-pool daemon: an HTTP server
// speaking the target-header wire protocol, backed by a JSON document
// store and signing its own tokens.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"userpoold/lib/apierr"
	"userpoold/lib/clients"
	"userpoold/lib/clock"
	"userpoold/lib/cognito"
	"userpoold/lib/config"
	"userpoold/lib/messages"
	"userpoold/lib/otp"
	"userpoold/lib/router"
	"userpoold/lib/store"
	"userpoold/lib/tokens"
	"userpoold/lib/triggers"
	"userpoold/lib/util"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	lambdasvc "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.FromEnv()
	logger := util.NewLogger(cfg.LogLevel)

	key, err := tokens.NewKeyMaterial()
	if err != nil {
		logger.WithError(err).Fatal("failed to generate signing key")
	}

	var backend store.Backend
	if cfg.UsesS3() {
		s3Client, err := clients.NewS3Client(context.Background(), cfg.S3Bucket, cfg.S3Local, cfg.S3Endpoint)
		if err != nil {
			logger.WithError(err).Fatal("failed to build S3 client")
		}
		backend = store.S3Backend{Objects: s3Client}
		logger.WithField("bucket", cfg.S3Bucket).Info("using S3-backed data store")
	} else {
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			logger.WithError(err).Fatal("failed to create data directory")
		}
		backend = store.FileBackend{Dir: cfg.DataDir}
		logger.WithField("dir", cfg.DataDir).Info("using file-backed data store")
	}
	factory := store.NewFactory(backend, logger)

	clk := clock.Real{}

	var lambdaClient triggers.LambdaAPI
	if len(cfg.TriggerFuncs) > 0 {
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background())
		if err != nil {
			logger.WithError(err).Fatal("failed to load AWS config for trigger invocation")
		}
		lambdaClient = lambdasvc.NewFromConfig(awsCfg)
	}
	invoker := triggers.NewInvoker(cfg.TriggerFuncs, lambdaClient, logger)
	trig := triggers.New(invoker)

	tokenGen := tokens.New(key, trig, clk, cfg.IssuerBase)
	msgs := messages.New(trig, messages.LogSink{Logger: logger})
	cognitoSvc := cognito.New(factory, clk, logger)

	svcs := &router.Services{
		Cognito:  cognitoSvc,
		Triggers: trig,
		Messages: msgs,
		Tokens:   tokenGen,
		OTP:      otp.SixDigit{},
		Clock:    clk,
	}
	rt := router.New(svcs)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /", handleInvoke(rt, logger))
	mux.HandleFunc("GET /{userPoolId}/.well-known/jwks.json", handleJWKS(key))

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: mux,
	}

	go func() {
		logger.WithField("port", cfg.Port).Info("userpoold listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("graceful shutdown failed")
	}
}

// handleInvoke dispatches every POST / request by the X-Amz-Target header,
// the wire convention the AWS JSON 1.1 protocol uses to name an operation.
func handleInvoke(rt *router.Router, logger *logrus.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rc := router.NewContext(r.Context(), logger)

		target := r.Header.Get("X-Amz-Target")
		operation := target
		if idx := strings.LastIndex(target, "."); idx >= 0 {
			operation = target[idx+1:]
		}
		if operation == "" {
			util.WriteWireError(w, http.StatusBadRequest, "InvalidParameterError", "missing X-Amz-Target header")
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			util.WriteWireError(w, http.StatusBadRequest, "InvalidParameterError", "failed to read request body")
			return
		}

		result, err := rt.Route(rc, operation, json.RawMessage(body))
		if err != nil {
			writeTargetError(w, rc, err)
			return
		}
		util.WriteJSON(w, http.StatusOK, result)
	}
}

func writeTargetError(w http.ResponseWriter, rc *router.Context, err error) {
	var apiErr *apierr.Error
	if errors.As(err, &apiErr) {
		util.WriteWireError(w, apiErr.Status, apiErr.Type, apiErr.Message)
		return
	}
	rc.Logger.WithError(err).Error("unhandled target error")
	util.WriteWireError(w, http.StatusInternalServerError, "UnsupportedError", "internal error")
}

func handleJWKS(key *tokens.KeyMaterial) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		util.WriteJSON(w, http.StatusOK, key.JWKS())
	}
}
