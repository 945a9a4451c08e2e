package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tanpawarit/Chative-Frontline-Orchestrator/agent/agents/assistant"
	"github.com/tanpawarit/Chative-Frontline-Orchestrator/agent/agents/frontline"
	"github.com/tanpawarit/Chative-Frontline-Orchestrator/agent/agents/orchestrator"
	"github.com/tanpawarit/Chative-Frontline-Orchestrator/agent/agents/specialist"
	contractx "github.com/tanpawarit/Chative-Frontline-Orchestrator/agent/contract"
	llmx "github.com/tanpawarit/Chative-Frontline-Orchestrator/agent/llm"
	nodex "github.com/tanpawarit/Chative-Frontline-Orchestrator/agent/nodes"
	"github.com/tanpawarit/Chative-Frontline-Orchestrator/agent/server"
	statex "github.com/tanpawarit/Chative-Frontline-Orchestrator/agent/state"
	"github.com/tanpawarit/Chative-Frontline-Orchestrator/agent/workers"
	configx "github.com/tanpawarit/Chative-Frontline-Orchestrator/pkg/config"
	_ "github.com/tanpawarit/Chative-Frontline-Orchestrator/pkg/logger/autoload"
	"github.com/tanpawarit/Chative-Frontline-Orchestrator/pkg/mailer"
	openrouterx "github.com/tanpawarit/Chative-Frontline-Orchestrator/pkg/openrouter"
	qstashx "github.com/tanpawarit/Chative-Frontline-Orchestrator/pkg/qstash"
	"github.com/tanpawarit/Chative-Frontline-Orchestrator/pkg/serpapi"
)

type AppConfig struct {
	FrontlineEnabled bool          `envconfig:"FRONTLINE_ENABLED" split_words:"true" default:"true"`
	MaxAttempts      int           `envconfig:"MAX_ATTEMPTS" split_words:"true" default:"3"`
	PruneInterval    time.Duration `envconfig:"PRUNE_INTERVAL" split_words:"true" default:"1h"`
}

var envFile string

func main() {
	rootCmd := &cobra.Command{
		Use:   "chative",
		Short: "Conversational assistant with frontline triage and an evaluated worker loop",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			configx.SetEnvFile(envFile)
		},
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env", "", "path to an env file (defaults to ./.env when present)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(chatCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the websocket and HTTP chat endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			historyCfg, err := configx.New[statex.Config]("HISTORY")
			if err != nil {
				return fmt.Errorf("load history config: %w", err)
			}
			store, err := openStore(ctx, *historyCfg)
			if err != nil {
				return err
			}
			defer store.Close()

			bot, err := buildAssistant(ctx, store)
			if err != nil {
				return err
			}

			serverCfg, err := configx.New[server.Config]("APP")
			if err != nil {
				return fmt.Errorf("load server config: %w", err)
			}
			opts := []server.Option{server.WithSessions(store)}
			qstashCfg, err := configx.New[qstashx.Config]("QSTASH")
			if err != nil {
				return fmt.Errorf("load qstash config: %w", err)
			}
			if qstashCfg.Enabled() {
				client, err := qstashx.NewClient(*qstashCfg)
				if err != nil {
					return err
				}
				opts = append(opts, server.WithMirror(client, qstashCfg.Destination))
				log.Info().Str("destination", qstashCfg.Destination).Msg("replies mirrored to qstash")
			}

			srv, err := server.New(*serverCfg, bot, opts...)
			if err != nil {
				return err
			}

			if sqlStore, ok := store.(*statex.SQLStore); ok {
				appCfg, err := configx.New[AppConfig]("APP")
				if err != nil {
					return fmt.Errorf("load app config: %w", err)
				}
				go pruneHistory(ctx, sqlStore, appCfg.PruneInterval, historyCfg.TTL)
			}

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start()
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			log.Info().Msg("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), serverCfg.ShutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}

func chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Chat with the assistant on stdin/stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store := statex.NewMemoryStore(1, 200, 0)
			defer store.Close()

			bot, err := buildAssistant(ctx, store)
			if err != nil {
				return err
			}
			return repl(ctx, bot, store, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

// repl reads one message per line. /reset forgets the conversation and /exit quits.
func repl(ctx context.Context, bot *assistant.Assistant, sessions server.SessionStore, in io.Reader, out io.Writer) error {
	sessionID := uuid.NewString()
	sink := contractx.ReplySinkFunc(func(ctx context.Context, sessionID string, text string) error {
		_, err := fmt.Fprintf(out, "assistant> %s\n", text)
		return err
	})

	scanner := bufio.NewScanner(in)
	fmt.Fprint(out, "you> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
		case "/exit", "/quit":
			return nil
		case "/reset":
			if err := sessions.Delete(ctx, sessionID); err != nil {
				log.Error().Err(err).Msg("chat: reset failed")
			} else {
				fmt.Fprintln(out, "(conversation cleared)")
			}
		default:
			if _, err := bot.Respond(ctx, assistant.Inbound{SessionID: sessionID, Payload: line}, sink); err != nil &&
				!errors.Is(err, contractx.ErrNoUserInput) {
				log.Error().Err(err).Msg("chat: respond failed")
			}
		}
		fmt.Fprint(out, "you> ")
	}
	return scanner.Err()
}

func openStore(ctx context.Context, cfg statex.Config) (statex.Store, error) {
	upstashCfg, err := configx.New[statex.UpstashRedisConfig]("UPSTASH_REDIS")
	if err != nil {
		return nil, fmt.Errorf("load upstash config: %w", err)
	}
	store, err := statex.Open(ctx, cfg, *upstashCfg)
	if err != nil {
		return nil, fmt.Errorf("open history store: %w", err)
	}
	log.Info().Str("backend", string(cfg.Backend)).Msg("history store ready")
	return store, nil
}

// buildAssistant wires the model registry, workers and orchestrator. Without an LLM
// credential the assistant answers every message with a configuration notice.
func buildAssistant(ctx context.Context, history nodex.History) (*assistant.Assistant, error) {
	appCfg, err := configx.New[AppConfig]("APP")
	if err != nil {
		return nil, fmt.Errorf("load app config: %w", err)
	}
	llmCfg, err := configx.New[llmx.Config]("LLM")
	if err != nil {
		return nil, fmt.Errorf("load llm config: %w", err)
	}

	if !llmCfg.Configured() {
		log.Warn().Msg("LLM_API_KEY is missing. Agent will not function until configured.")
		return assistant.New(history, nil, nil, assistant.Config{MissingCredential: true})
	}

	preflightModels(ctx, *llmCfg)

	reg, err := specialist.NewRegistry(ctx, *llmCfg)
	if err != nil {
		return nil, fmt.Errorf("build model registry: %w", err)
	}

	serpCfg, err := configx.New[serpapi.Config]("SERPAPI")
	if err != nil {
		return nil, fmt.Errorf("load serpapi config: %w", err)
	}
	mailCfg, err := configx.New[mailer.Config]("SENDGRID")
	if err != nil {
		return nil, fmt.Errorf("load sendgrid config: %w", err)
	}
	searcher := serpapi.NewClient(*serpCfg)
	mail := mailer.NewClient(*mailCfg)
	if !searcher.Configured() {
		log.Warn().Msg("SERPAPI_KEY is missing; search requests will fail")
	}
	if !mail.Configured() {
		log.Warn().Msg("SENDGRID_API_KEY is missing; email requests will fail")
	}

	orch, err := orchestrator.New(
		reg.Classifier(),
		reg.Evaluator(),
		workers.Default(reg, searcher, mail),
		orchestrator.WithMaxAttempts(appCfg.MaxAttempts),
	)
	if err != nil {
		return nil, err
	}
	log.Info().Int("max_attempts", orch.MaxAttempts()).Msg("orchestrator ready")

	var triager nodex.Triager
	if appCfg.FrontlineEnabled {
		svc, err := frontline.New(reg.Frontline())
		if err != nil {
			return nil, err
		}
		triager = svc
	} else {
		log.Info().Msg("frontline disabled; every message goes to the orchestrator")
	}

	return assistant.New(history, orch, triager, assistant.Config{})
}

// preflightModels warns about configured models the provider does not list.
func preflightModels(ctx context.Context, cfg llmx.Config) {
	orCfg, ok := cfg.BuilderFor(contractx.AgentTypeGeneral).(*openrouterx.Config)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	missing, err := openrouterx.MissingModels(ctx, openrouterx.NewClient(*orCfg), cfg.Models())
	if err != nil {
		log.Warn().Err(err).Msg("model preflight failed")
		return
	}
	for _, m := range missing {
		log.Warn().Str("model", m).Msg("configured model is not offered by the provider")
	}
}

func pruneHistory(ctx context.Context, store *statex.SQLStore, every, retain time.Duration) {
	if every <= 0 || retain <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := store.Prune(ctx, retain)
			if err != nil {
				log.Error().Err(err).Msg("history prune failed")
				continue
			}
			log.Info().Int64("deleted", n).Msg("history pruned")
		}
	}
}
