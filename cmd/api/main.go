package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	adactor "github.com/berfenger/eta2mqtt/internal/adapter/actor"
	"github.com/berfenger/eta2mqtt/internal/config"
	"github.com/berfenger/eta2mqtt/internal/core/actor"
	"github.com/berfenger/eta2mqtt/internal/core/service"
	"github.com/berfenger/eta2mqtt/internal/metrics"
	"github.com/berfenger/eta2mqtt/internal/server"
	"github.com/berfenger/eta2mqtt/internal/util/actorutil"
	"github.com/berfenger/eta2mqtt/pkg/eta_rest"

	pactor "github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/reugn/go-quartz/quartz"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func gracefulShutdown(apiServer *http.Server, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Listen for the interrupt signal.
	<-ctx.Done()

	log.Println("shutting down gracefully, press Ctrl+C again to force")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown with error: %v", err)
	}

	log.Println("Server exiting")

	// Notify the main goroutine that the shutdown is complete
	done <- true
}

func main() {

	configFile := pflag.String("config", "", "path to a YAML config file (overrides CONFIG_FILE)")
	pflag.Parse()

	// load and print config
	cfg, err := initConfig(*configFile)
	if err != nil {
		slog.Error("config errors", "error", err)
		os.Exit(1)
	}
	safePrintConfig(*cfg)

	// zap logger
	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(cfg.LogLevel)

	logger := zap.Must(zapCfg.Build())
	defer logger.Sync()

	// init actor system
	as := actorutil.NewActorSystemWithZapLogger(logger)
	ctx := as.Root

	m := metrics.New()

	// init ETA actor provider
	etaProv, err := etaActorProvider(cfg, m, logger)
	if err != nil {
		logger.Fatal("invalid ETA connection settings", zap.Error(err))
	}

	props := pactor.PropsFromProducer(func() pactor.Actor {
		return actor.NewMasterOfPuppetsActor(*cfg, etaProv, mqttActorProvider(cfg, logger), m, logger)
	})
	pid, err := ctx.SpawnNamed(props, "master")
	if err != nil {
		logger.Fatal("could not spawn master actor", zap.Error(err))
	}

	// periodic HA discovery refresh
	schedCtx, cancelSched := context.WithCancel(context.Background())
	sched, err := startDiscoveryRefresh(schedCtx, cfg, ctx, pid)
	if err != nil {
		logger.Error("discovery refresh disabled", zap.Error(err))
	}

	server := server.NewServer(*cfg, ctx, pid, m.Handler())
	// Create a done channel to signal when the shutdown is complete
	done := make(chan bool, 1)

	// Run graceful shutdown in a separate goroutine
	go gracefulShutdown(server, done)

	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		panic(fmt.Sprintf("http server error: %s", err))
	}

	// Wait for the graceful shutdown to complete
	<-done
	log.Println("Graceful shutdown complete.")

	if sched != nil {
		sched.Stop()
	}
	cancelSched()

	ctx.Stop(pid)
	as.Shutdown()
}

func initConfig(configFile string) (*config.Config, error) {

	// alias PORT => ETA2MQTT_PORT
	if port := os.Getenv("PORT"); port != "" {
		os.Setenv("ETA2MQTT_PORT", port)
	}

	setConfigDefaults()

	viper.SetEnvPrefix("eta2mqtt")
	// eta.host => ETA2MQTT_ETA_HOST
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// if defined, try to load config from yaml file
	if configFile == "" {
		configFile = os.Getenv("CONFIG_FILE")
	}
	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			slog.Info("Using config", "file", configFile)
			viper.SetConfigFile(configFile)

			err = viper.ReadInConfig()
			if err != nil {
				slog.Error("Error reading config file", "error", err)
			}
		} else {
			slog.Warn("Config file not found", "file", configFile)
		}
	}

	var cfg config.Config

	err := viper.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	cfg.LogLevel = config.ParseLogLevel(viper.GetString("log_level"))

	if err := config.Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func etaActorProvider(cfg *config.Config, m *metrics.Metrics, logger *zap.Logger) (actor.ETAActorProvider, error) {

	timeout := time.Duration(cfg.ETA.RequestTimeoutMillis) * time.Millisecond
	reader, err := eta_rest.CreateHTTPRestReader(cfg.ETA.Host, cfg.ETA.Port, timeout, logger, []eta_rest.Instrument{m.Instrument()})
	if err != nil {
		return nil, err
	}

	endpoints := service.EndpointsFromConfig(cfg.Sensors)

	return func() *adactor.ETAActor {
		return adactor.NewETAActor(reader, endpoints, cfg.ETA, logger)
	}, nil
}

func mqttActorProvider(cfg *config.Config, logger *zap.Logger) actor.MQTTActorProvider {
	return func(es *eventstream.EventStream) *adactor.MQTTActor {
		return adactor.NewMQTTActor(cfg, es, logger)
	}
}

func startDiscoveryRefresh(ctx context.Context, cfg *config.Config, root *pactor.RootContext, master *pactor.PID) (quartz.Scheduler, error) {
	if !cfg.MQTT.HADiscoveryEnable || cfg.MQTT.HADiscoveryRefreshCron == "" {
		return nil, nil
	}
	sched := quartz.NewStdScheduler()
	if err := actor.ScheduleDiscoveryRefresh(sched, cfg.MQTT.HADiscoveryRefreshCron, actor.NewDiscoveryRefreshJob(root, master)); err != nil {
		return nil, err
	}
	sched.Start(ctx)
	return sched, nil
}

func setConfigDefaults() {
	viper.SetDefault("log_level", "warn")
	viper.SetDefault("eta.host", "")
	viper.SetDefault("eta.port", 8080)
	viper.SetDefault("eta.request_timeout_millis", 5000)
	viper.SetDefault("eta.resolve_parent_names", false)
	viper.SetDefault("mqtt.host", "localhost")
	viper.SetDefault("mqtt.port", 1883)
	viper.SetDefault("mqtt.username", "")
	viper.SetDefault("mqtt.password", "")
	viper.SetDefault("mqtt.ha_discovery_enable", true)
	viper.SetDefault("mqtt.base_topic", "eta2mqtt")
	viper.SetDefault("mqtt.ha_discovery_topic", "homeassistant")
	viper.SetDefault("mqtt.ha_discovery_refresh_cron", "0 0 */6 * * *")
	viper.SetDefault("monitor.poll_interval_millis", 60000)
	viper.SetDefault("port", 8080)
}

func safePrintConfig(cfg config.Config) {
	cfg.MQTT.Username = "*redacted*"
	cfg.MQTT.Password = "*redacted*"
	slog.Info("Using", "config", cfg)
}
