package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"
	"go.uber.org/zap"

	"github.com/matheus3301/smsdash/internal/airtable"
	"github.com/matheus3301/smsdash/internal/api"
	"github.com/matheus3301/smsdash/internal/config"
	"github.com/matheus3301/smsdash/internal/conversation"
	"github.com/matheus3301/smsdash/internal/function"
	"github.com/matheus3301/smsdash/internal/logging"
	"github.com/matheus3301/smsdash/internal/paramstore"
	"github.com/matheus3301/smsdash/internal/status"
	"github.com/matheus3301/smsdash/internal/twilio"
)

func main() {
	ctx := context.Background()
	logger := logging.NewConsole(os.Getenv("LOG_LEVEL"))
	defer func() { _ = logger.Sync() }()

	// ---- Configuration ----
	var cfg *config.Config
	p := cfg.Profile(config.DefaultProfile)
	config.ApplyEnv(&p, os.Getenv)

	if prefix := os.Getenv("SMSDASH_PARAM_PREFIX"); prefix != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			logger.Fatal("failed to load AWS config", zap.Error(err))
		}
		ssmClient, err := paramstore.New(awsssm.NewFromConfig(awsCfg))
		if err != nil {
			logger.Fatal("failed to create SSM client", zap.Error(err))
		}
		if err := paramstore.Apply(ctx, ssmClient, prefix, p.Bindings()); err != nil {
			logger.Fatal("failed to read secrets", zap.String("prefix", prefix), zap.Error(err))
		}
	}
	if err := p.Validate(); err != nil {
		logger.Fatal("incomplete configuration", zap.Error(err))
	}

	// ---- Clients ----
	tw, err := twilio.NewClient(p.Twilio, twilio.WithLogger(logger.Named("twilio")))
	if err != nil {
		logger.Fatal("failed to create twilio client", zap.Error(err))
	}
	at, err := airtable.NewClient(p.Airtable, airtable.WithLogger(logger.Named("airtable")))
	if err != nil {
		logger.Fatal("failed to create airtable client", zap.Error(err))
	}

	// ---- Handler ----
	machine := status.NewMachine(nil)
	svc := conversation.NewService(conversation.Deps{
		Messages:   tw,
		Directory:  at,
		Sender:     tw,
		Contacts:   at,
		SelfNumber: p.Twilio.Phone,
		Health:     machine,
		Logger:     logger,
	})
	deps := api.Deps{
		Conversations: svc,
		Status:        machine,
		CORSOrigin:    p.Server.CORSOrigin,
		Logger:        logger.Named("http"),
	}
	if p.Twilio.VoiceEnabled() {
		deps.Voice = tw
	}
	if p.Server.APIToken != "" {
		deps.Auth = api.StaticToken(p.Server.APIToken)
	}

	adapter, err := function.NewAdapter(api.NewRouter(deps))
	if err != nil {
		logger.Fatal("failed to create function adapter", zap.Error(err))
	}

	lambda.Start(adapter.Handle)
}
