package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
	cli "github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/jose-valero/guildrules-bot/internal/adapters/discord"
	"github.com/jose-valero/guildrules-bot/internal/adapters/httpapi"
	"github.com/jose-valero/guildrules-bot/internal/app/service"
	"github.com/jose-valero/guildrules-bot/internal/infra/config"
	"github.com/jose-valero/guildrules-bot/internal/infra/storage"
)

func main() {
	_ = godotenv.Load()
	if err := run(os.Args); err != nil {
		slog.Error("exiting", "err", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	app := cli.App{
		Name:  "guildrules-bot",
		Usage: "reglas por guild: alertas de frases, auto-pings, auto-polls, stats de emojis",
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Usage:   "archivo YAML de configuración",
			EnvVars: []string{"CONFIG_FILE"},
		},
		&cli.StringFlag{
			Name:    "store",
			Usage:   "postgres | memory",
			EnvVars: []string{"STORE"},
		},
	}

	app.Commands = []*cli.Command{
		runCmd,
		migrateCmd,
		importCmd,
	}

	return app.Run(args)
}

// stores son los repos que usa el engine, sobre Postgres o en memoria.
type stores struct {
	phrases   service.PhraseRepo
	autoPings service.AutoPingRepo
	autoPolls service.AutoPollRepo
	emojis    interface {
		service.EmojiRepo
		httpapi.EmojiSource
	}
	cooldowns service.CooldownRepo
}

func loadConfig(cctx *cli.Context) (config.Config, error) {
	cfg, err := config.Load(cctx.String("config"))
	if err != nil {
		return cfg, err
	}
	if s := cctx.String("store"); s != "" {
		cfg.Store = s
	}
	return cfg, nil
}

func openStores(ctx context.Context, cfg config.Config) (stores, func(), error) {
	if cfg.Store == config.StoreMemory {
		m := storage.NewMemory()
		return stores{
			phrases:   m.Phrases,
			autoPings: m.AutoPings,
			autoPolls: m.AutoPolls,
			emojis:    m.Emojis,
			cooldowns: m.Cooldowns,
		}, func() {}, nil
	}

	db, err := storage.Open(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		return stores{}, nil, err
	}
	pg := storage.NewPostgres(db)
	return stores{
		phrases:   pg.Phrases,
		autoPings: pg.AutoPings,
		autoPolls: pg.AutoPolls,
		emojis:    pg.Emojis,
		cooldowns: pg.Cooldowns,
	}, func() { _ = db.Close() }, nil
}

var runCmd = &cli.Command{
	Name:  "run",
	Usage: "conecta al gateway y procesa eventos",
	Action: func(cctx *cli.Context) error {
		cfg, err := loadConfig(cctx)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		logger := cfg.Log.Logger(os.Stdout)
		slog.SetDefault(logger)

		ctx, stop := signal.NotifyContext(cctx.Context, syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if cfg.Store == config.StorePostgres {
			db, err := storage.Open(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
			if err != nil {
				return err
			}
			err = storage.Migrate(db)
			_ = db.Close()
			if err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			logger.Info("✅ DB lista y migrada")
		} else {
			logger.Warn("store en memoria: las reglas se pierden al reiniciar")
		}

		st, closeStore, err := openStores(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		auth := cfg.Discord.Token
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(auth)), "bot ") {
			auth = "Bot " + strings.TrimSpace(auth)
		}
		s, err := discordgo.New(auth)
		if err != nil {
			return err
		}

		gate := service.NewGate(st.cooldowns)
		commands := service.NewCommands(logger,
			discord.NewAuthorizer(s, cfg.Discord.AdminRoleIDs, cfg.Discord.ModRoleIDs, cfg.Discord.RoleCacheTTL),
			gate)
		builtins := service.Builtins{
			Phrases:   st.phrases,
			AutoPings: st.autoPings,
			AutoPolls: st.autoPolls,
			Emojis:    st.emojis,
		}
		if err := builtins.Register(commands); err != nil {
			return err
		}
		engine := service.NewEngine(logger,
			service.NewMatcher(logger, st.phrases, st.autoPings, st.autoPolls),
			gate,
			service.NewDispatcher(logger, discord.NewPlatform(s), st.emojis, service.DispatcherOptions{
				Timeout:           cfg.Rules.DispatchTimeout,
				OperatorChannelID: cfg.Discord.OperatorChannelID,
				ReportEvery:       cfg.Rules.ReportEvery,
			}),
			commands,
			cfg.Rules.PhraseAlertCooldown,
		)

		r := discord.NewRouter(logger, s, cfg.Discord.GuildIDs, cfg.Discord.Prefix, engine, cfg.Rules.EventTimeout)
		r.Handlers()
		if err := s.Open(); err != nil {
			return err
		}
		defer s.Close()
		logger.Info("✅ Conectado", "user", s.State.User.Username, "id", s.State.User.ID)

		if err := r.Register(); err != nil {
			return fmt.Errorf("registrando comandos: %w", err)
		}
		logger.Info("✅ comandos registrados", "guilds", cfg.Discord.GuildIDs)

		g, gctx := errgroup.WithContext(ctx)
		if cfg.HTTP.Addr != "" {
			srv := httpapi.New(logger, cfg.HTTP.Token, st.emojis)
			g.Go(func() error { return srv.Run(gctx, cfg.HTTP.Addr) })
		}
		g.Go(func() error {
			<-gctx.Done()
			return nil
		})
		return g.Wait()
	},
}

var migrateCmd = &cli.Command{
	Name:  "migrate",
	Usage: "aplica las migraciones de Postgres",
	Action: func(cctx *cli.Context) error {
		cfg, err := loadConfig(cctx)
		if err != nil {
			return err
		}
		if cfg.Store != config.StorePostgres {
			return errors.New("migrate sólo aplica al store postgres")
		}
		if err := cfg.ValidateStore(); err != nil {
			return err
		}
		db, err := storage.Open(cctx.Context, cfg.DatabaseURL, cfg.DBMaxConns)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := storage.Migrate(db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		slog.Info("✅ migraciones aplicadas")
		return nil
	},
}

var importCmd = &cli.Command{
	Name:      "import",
	Usage:     "carga reglas desde un archivo YAML",
	ArgsUsage: "<rules.yaml>",
	Action: func(cctx *cli.Context) error {
		if cctx.NArg() != 1 {
			return cli.Exit("uso: import <rules.yaml>", 2)
		}
		cfg, err := loadConfig(cctx)
		if err != nil {
			return err
		}
		if cfg.Store != config.StorePostgres {
			return errors.New("import necesita el store postgres")
		}
		if err := cfg.ValidateStore(); err != nil {
			return err
		}
		st, closeStore, err := openStores(cctx.Context, cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		im := service.Importer{Phrases: st.phrases, AutoPings: st.autoPings, AutoPolls: st.autoPolls}
		rep, err := im.ImportFile(cctx.Context, cctx.Args().First())
		if err != nil {
			return err
		}
		slog.Info("✅ reglas importadas", "phrases", rep.Phrases, "autopings", rep.AutoPings, "autopolls", rep.AutoPolls)
		return nil
	},
}
