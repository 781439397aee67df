package main

import (
	"context"
	"errors"
	"fmt"
	"github.com/MatusOllah/slogcolor"
	"github.com/apomuden/apomuden/internal/ai"
	"github.com/apomuden/apomuden/internal/answer"
	"github.com/apomuden/apomuden/internal/api"
	"github.com/apomuden/apomuden/internal/auth"
	"github.com/apomuden/apomuden/internal/bot"
	"github.com/apomuden/apomuden/internal/db"
	"github.com/apomuden/apomuden/internal/kb"
	"github.com/apomuden/apomuden/internal/lang"
	"github.com/apomuden/apomuden/internal/search"
	"github.com/apomuden/apomuden/internal/transcribe"
	"github.com/apomuden/apomuden/internal/triage"
	"github.com/google/uuid"
	"github.com/modfin/clix"
	"github.com/urfave/cli/v3"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
)

func main() {

	defer func() {
		db.Statistics()
		answer.Statistics()
	}()

	cmd := &cli.Command{
		Name:  "apomuden",
		Usage: "bilingual (English/Akan) health question answering",

		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "db",
				Usage:   "sqlite file or mongodb:// uri",
				Value:   "./apomuden.db",
				Sources: cli.EnvVars("APOMUDEN_DB"),
			},
			&cli.StringFlag{
				Name:    "db-name",
				Usage:   "database name when using mongodb",
				Value:   db.DefaultDatabase,
				Sources: cli.EnvVars("APOMUDEN_DB_NAME"),
			},
			&cli.StringFlag{
				Name:    "kb-file",
				Usage:   "json or yaml file with extra knowledge base entries",
				Sources: cli.EnvVars("APOMUDEN_KB_FILE"),
			},

			&cli.StringFlag{
				Name:    "bellman-url",
				Sources: cli.EnvVars("APOMUDEN_BELLMAN_URL"),
			},
			&cli.StringFlag{
				Name:    "bellman-key",
				Sources: cli.EnvVars("APOMUDEN_BELLMAN_KEY"),
			},
			&cli.StringFlag{
				Name:    "bellman-key-name",
				Value:   "apomuden",
				Sources: cli.EnvVars("APOMUDEN_BELLMAN_KEY_NAME"),
			},
			&cli.StringFlag{
				Name:    "vertexai-credential",
				Sources: cli.EnvVars("APOMUDEN_VERTEXAI_CREDENTIAL"),
			},
			&cli.StringFlag{
				Name:    "vertexai-project",
				Sources: cli.EnvVars("APOMUDEN_VERTEXAI_PROJECT"),
			},
			&cli.StringFlag{
				Name:    "vertexai-region",
				Sources: cli.EnvVars("APOMUDEN_VERTEXAI_REGION"),
			},
			&cli.StringFlag{
				Name:    "openai-key",
				Sources: cli.EnvVars("APOMUDEN_OPENAI_KEY"),
			},
			&cli.StringFlag{
				Name:    "anthropic-key",
				Sources: cli.EnvVars("APOMUDEN_ANTHROPIC_KEY"),
			},

			&cli.StringFlag{
				Name:    "llm-model",
				Usage:   "provider/name of the model used for answers and translation",
				Value:   "OpenAI/gpt-4o-mini",
				Sources: cli.EnvVars("APOMUDEN_LLM_MODEL"),
			},
			&cli.DurationFlag{
				Name:    "llm-timeout",
				Value:   30 * time.Second,
				Sources: cli.EnvVars("APOMUDEN_LLM_TIMEOUT"),
			},
			&cli.FloatFlag{
				Name:    "confidence-floor",
				Usage:   "lowest model confidence accepted as an answer",
				Value:   answer.DefaultFloor,
				Sources: cli.EnvVars("APOMUDEN_CONFIDENCE_FLOOR"),
			},

			&cli.BoolFlag{
				Name:    "web-search",
				Usage:   "fall back to searching trusted health sites",
				Value:   true,
				Sources: cli.EnvVars("APOMUDEN_WEB_SEARCH"),
			},
			&cli.IntFlag{
				Name:    "max-search-results",
				Value:   search.DefaultMaxResults,
				Sources: cli.EnvVars("APOMUDEN_MAX_SEARCH_RESULTS"),
			},
			&cli.DurationFlag{
				Name:    "search-timeout",
				Value:   10 * time.Second,
				Sources: cli.EnvVars("APOMUDEN_SEARCH_TIMEOUT"),
			},
			&cli.DurationFlag{
				Name:    "search-cache-ttl",
				Value:   time.Hour,
				Sources: cli.EnvVars("APOMUDEN_SEARCH_CACHE_TTL"),
			},

			&cli.BoolFlag{
				Name:    "verbose",
				Sources: cli.EnvVars("APOMUDEN_VERBOSE"),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			opts := *slogcolor.DefaultOptions
			opts.Level = slog.LevelInfo
			if cmd.Bool("verbose") {
				opts.Level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slogcolor.NewHandler(os.Stderr, &opts)))
			return ctx, nil
		},

		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "serve the http api",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "addr",
						Value:   ":8000",
						Sources: cli.EnvVars("APOMUDEN_ADDR"),
					},
					&cli.StringFlag{
						Name:    "cors-origins",
						Usage:   "comma separated allowed origins",
						Value:   "http://localhost:3000,http://localhost:8080",
						Sources: cli.EnvVars("APOMUDEN_CORS_ORIGINS"),
					},
					&cli.StringFlag{
						Name:    "jwt-secret",
						Sources: cli.EnvVars("APOMUDEN_JWT_SECRET"),
					},
					&cli.DurationFlag{
						Name:    "token-ttl",
						Value:   auth.DefaultTTL,
						Sources: cli.EnvVars("APOMUDEN_TOKEN_TTL"),
					},
					&cli.StringFlag{
						Name:    "transcribe-url",
						Usage:   "speech to text endpoint, audio questions are disabled when empty",
						Sources: cli.EnvVars("APOMUDEN_TRANSCRIBE_URL"),
					},
					&cli.DurationFlag{
						Name:    "transcribe-timeout",
						Value:   time.Minute,
						Sources: cli.EnvVars("APOMUDEN_TRANSCRIBE_TIMEOUT"),
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
					defer stop()

					resolver, err := newResolver(cmd)
					if err != nil {
						return err
					}

					store, err := db.Open(ctx, cmd.String("db"), cmd.String("db-name"))
					if err != nil {
						return fmt.Errorf("failed to open database %s: %w", cmd.String("db"), err)
					}
					defer store.Close(context.Background())

					secret := cmd.String("jwt-secret")
					if secret == "" {
						secret = uuid.NewString()
						slog.Default().Warn("no jwt secret configured, tokens will not survive a restart")
					}
					issuer, err := auth.NewIssuer(secret, cmd.Duration("token-ttl"))
					if err != nil {
						return fmt.Errorf("failed to create token issuer: %w", err)
					}

					var transcriber api.Transcriber
					if u := cmd.String("transcribe-url"); u != "" {
						transcriber = transcribe.NewHTTP(u, cmd.Duration("transcribe-timeout"))
					}

					server := api.New(resolver, db.New(store), issuer, transcriber, slog.Default())
					if resolver.Model != nil {
						server.Model = resolver.Model.Name
					}
					server.WebSearch = resolver.Search != nil

					return server.ListenAndServe(ctx, clix.ParseCommand[api.Config](cmd))
				},
			},

			{
				Name:      "ask",
				Usage:     "answer a single question",
				ArgsUsage: "<question...>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "language",
						Usage: "en, ak or auto",
						Value: "auto",
					},
					&cli.StringFlag{
						Name:  "context",
						Usage: "passage the model should answer from",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					question := strings.Join(cmd.Args().Slice(), " ")

					resolver, err := newResolver(cmd)
					if err != nil {
						return err
					}

					res, err := resolver.Resolve(ctx, answer.Question{
						Text:     question,
						Language: cmd.String("language"),
						Context:  cmd.String("context"),
					})
					if err != nil {
						return fmt.Errorf("failed to answer: %w", err)
					}

					fmt.Println(res.Answer)
					fmt.Println()
					fmt.Printf("source: %s, confidence: %.2f, language: %s, emergency: %t\n",
						res.Source, res.ConfidenceValue(), res.Language, res.IsEmergency)
					return nil
				},
			},

			{
				Name:      "triage",
				Usage:     "only check a text for an emergency",
				ArgsUsage: "<text...>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "language",
						Value: "auto",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					resolver := &answer.Resolver{Triage: triage.Default()}
					res, ok := resolver.CheckEmergency(strings.Join(cmd.Args().Slice(), " "), cmd.String("language"))
					if !ok {
						fmt.Println("no emergency detected")
						return nil
					}
					fmt.Println(res.Answer)
					return nil
				},
			},

			{
				Name:  "kb",
				Usage: "inspect the knowledge base",
				Commands: []*cli.Command{
					{
						Name:  "list",
						Usage: "list entry keys",
						Action: func(ctx context.Context, cmd *cli.Command) error {
							base, err := loadKnowledgeBase(cmd.String("kb-file"))
							if err != nil {
								return err
							}
							for _, key := range base.Keys() {
								fmt.Println(key)
							}
							return nil
						},
					},
					{
						Name:      "match",
						Usage:     "show how a question scores against every entry",
						ArgsUsage: "<question...>",
						Action: func(ctx context.Context, cmd *cli.Command) error {
							base, err := loadKnowledgeBase(cmd.String("kb-file"))
							if err != nil {
								return err
							}
							question := strings.Join(cmd.Args().Slice(), " ")
							for _, s := range base.Scores(question) {
								if s.Total() == 0 {
									continue
								}
								fmt.Printf("%-16s overlap=%d bonus=%d total=%d\n", s.Key, s.Overlap, s.Bonus, s.Total())
							}
							m, ok := base.Retrieve(question, lang.English)
							if !ok {
								fmt.Println("no match")
								return nil
							}
							fmt.Printf("best: %s (%d)\n", m.Key, m.Score)
							return nil
						},
					},
				},
			},

			{
				Name:  "telegram",
				Usage: "answer questions sent to a telegram bot",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "telegram-token",
						Sources: cli.EnvVars("APOMUDEN_TELEGRAM_TOKEN"),
					},
					&cli.BoolFlag{
						Name:  "log-queries",
						Usage: "store answered messages in the query log",
						Value: true,
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
					defer stop()

					token := cmd.String("telegram-token")
					if token == "" {
						return errors.New("a telegram token is required")
					}

					resolver, err := newResolver(cmd)
					if err != nil {
						return err
					}

					client, err := bot.Connect(token, cmd.Bool("verbose"))
					if err != nil {
						return err
					}
					b := bot.New(client, resolver)
					b.Logger = slog.Default()

					if cmd.Bool("log-queries") {
						store, err := db.Open(ctx, cmd.String("db"), cmd.String("db-name"))
						if err != nil {
							return fmt.Errorf("failed to open database %s: %w", cmd.String("db"), err)
						}
						defer store.Close(context.Background())
						b.Queries = db.New(store)
					}

					return bot.Start(ctx, client, b)
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Default().Error("got error running apomuden", "err", err)
		os.Exit(1)
	}
}

func loadKnowledgeBase(path string) (*kb.Base, error) {
	if path == "" {
		return kb.Default(), nil
	}
	base, err := kb.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load knowledge base: %w", err)
	}
	slog.Default().Debug("loaded knowledge base", "file", path, "entries", base.Len())
	return base, nil
}

// newResolver wires the answer pipeline from the global flags. The model
// stage is only enabled when a provider for --llm-model is configured.
func newResolver(cmd *cli.Command) (*answer.Resolver, error) {
	logger := slog.Default()

	base, err := loadKnowledgeBase(cmd.String("kb-file"))
	if err != nil {
		return nil, err
	}

	proxy, err := ai.New(clix.ParseCommand[ai.APICredentials](cmd), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create proxy: %w", err)
	}
	model := ai.ParseModel(cmd.String("llm-model"))

	resolver := &answer.Resolver{
		Triage: triage.Default(),
		KB:     base,
		Translator: &ai.Translator{
			Proxy:   proxy,
			Model:   model,
			Timeout: cmd.Duration("llm-timeout"),
			Logger:  logger,
		},
		Logger: logger,
	}

	if proxy.Supports(model) {
		extractor := &ai.Extractor{
			Proxy:   proxy,
			Model:   model,
			Timeout: cmd.Duration("llm-timeout"),
			Logger:  logger,
		}
		resolver.Model = &answer.ModelAnswerer{
			Name:      extractor.Name(),
			Extractor: extractor,
			Floor:     cmd.Float("confidence-floor"),
			Logger:    logger,
		}
		logger.Debug("model stage enabled", "provider", model.Provider, "model", model.Name)
	} else {
		logger.Info("no provider for model, answering offline", "model", cmd.String("llm-model"), "providers", proxy.Providers())
	}

	if cmd.Bool("web-search") {
		ddg := search.NewDuckDuckGo(cmd.Duration("search-timeout"), int(cmd.Int("max-search-results")))
		ddg.Logger = logger
		resolver.Search = search.NewCached(ddg, cmd.Duration("search-cache-ttl"))
	}

	return resolver, nil
}
