package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pbaille/focusflow/internal/api"
	"github.com/pbaille/focusflow/internal/classifier"
	"github.com/pbaille/focusflow/internal/ingest"
	"github.com/pbaille/focusflow/internal/metrics"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server and device ingest",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s, err := getStore(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			clf, err := loadClassifier()
			if err != nil {
				return err
			}
			m := metrics.New()

			if cfg.MQTTEnabled() {
				sub, err := startIngest(s, m)
				if err != nil {
					return err
				}
				defer sub.Close()
			} else {
				log.Info("mqtt ingest disabled", "hint", "set FOCUSFLOW_MQTT_BROKER to enable")
			}

			server := api.New(s, api.Options{
				Addr:        cfg.Addr,
				CORSOrigins: cfg.CORSOrigins,
				Classifier:  clf,
				Metrics:     m,
				Logger:      log,
			})
			return server.Run(ctx)
		},
	}

	cmd.Flags().StringVarP(&cfg.Addr, "addr", "a", cfg.Addr, "server address")
	cmd.Flags().StringVar(&cfg.ModelPath, "model", cfg.ModelPath, "JSON linear model for the workload classifier")
	return cmd
}

func loadClassifier() (classifier.Classifier, error) {
	if cfg.ModelPath == "" {
		return classifier.RuleClassifier{}, nil
	}
	clf, err := classifier.LoadModel(cfg.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("load classifier model: %w", err)
	}
	log.Info("loaded classifier model", "path", cfg.ModelPath)
	return clf, nil
}

func startIngest(sink ingest.Sink, m *metrics.Metrics) (*ingest.Subscriber, error) {
	client, err := ingest.Connect(ingest.Config{
		Broker:   cfg.MQTTBroker,
		ClientID: cfg.MQTTClientID,
		Username: cfg.MQTTUsername,
		Password: cfg.MQTTPassword,
	}, log)
	if err != nil {
		return nil, err
	}
	sub, err := ingest.NewSubscriber(client, cfg.MQTTTopic, sink, m, log)
	if err != nil {
		client.Disconnect(0)
		return nil, err
	}
	if err := sub.Start(); err != nil {
		sub.Close()
		return nil, err
	}
	return sub, nil
}
