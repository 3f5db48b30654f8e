package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/rocketscienceinc/tictactoe-client/internal/config"
	"github.com/rocketscienceinc/tictactoe-client/internal/console"
	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
	"github.com/rocketscienceinc/tictactoe-client/internal/repository"
	"github.com/rocketscienceinc/tictactoe-client/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-client/internal/transport/rest"
	"github.com/rocketscienceinc/tictactoe-client/internal/transport/websocket"
	"github.com/rocketscienceinc/tictactoe-client/internal/usecase"
)

var (
	ErrAddrNotFound   = errors.New("redis address string is empty")
	ErrUnknownCommand = errors.New("unknown command")
	ErrMissingSession = errors.New("--session is required")
)

const usage = `usage:
  tictactoe create [--size N]
  tictactoe play --session ID [--player NAME]
  tictactoe link --session ID
  tictactoe sessions
`

// App - wired dependencies shared by the sub-commands.
type App struct {
	logger   *slog.Logger
	conf     *config.Config
	console  *console.Console
	in       io.Reader
	sessions *usecase.SessionManager
	dial     usecase.Dialer
}

// RunApp - runs the sub-command named by args[0].
func RunApp(logger *slog.Logger, conf *config.Config, args []string) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)
	go func() {
		select {
		case sig := <-sigs:
			log.Info("Received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	repo, closeRepo, err := newSessionRepository(ctx, conf)
	if err != nil {
		return err
	}
	defer func() {
		if err = closeRepo(); err != nil {
			log.Error("could not close session store", "error", err)
		}
	}()

	out := console.New(os.Stdout)
	client := rest.NewClient(logger, conf.ServerURL, conf.RequestTimeout)

	dial, err := newDialer(logger, conf)
	if err != nil {
		return err
	}

	app := &App{
		logger:   log,
		conf:     conf,
		console:  out,
		in:       os.Stdin,
		sessions: usecase.NewSessionManager(logger, client, repo, out, conf.PageURL),
		dial:     dial,
	}

	return app.Run(ctx, args)
}

// Run - dispatches args to a sub-command.
func (that *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		that.console.Printf("%s", usage)
		return nil
	}

	switch args[0] {
	case "create":
		return that.create(ctx, args[1:])
	case "play":
		return that.play(ctx, args[1:])
	case "link":
		return that.link(ctx, args[1:])
	case "sessions":
		return that.list(ctx)
	case "help", "-h", "--help":
		that.console.Printf("%s", usage)
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownCommand, args[0])
	}
}

func (that *App) create(ctx context.Context, args []string) error {
	flags := pflag.NewFlagSet("create", pflag.ContinueOnError)
	size := flags.Int("size", 3, "board size")

	if err := flags.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}

	session, link, err := that.sessions.Create(ctx, *size)
	if err != nil {
		return err
	}

	that.logger.Info("session created", "sessionID", session.ID)
	that.console.Printf("session: %s\nlink: %s\n", session.ID, link)

	return nil
}

func (that *App) play(ctx context.Context, args []string) error {
	flags := pflag.NewFlagSet("play", pflag.ContinueOnError)
	sessionID := flags.String("session", "", "session id")
	player := flags.String("player", "", "player name, generated when empty")

	if err := flags.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}

	if *sessionID == "" {
		return ErrMissingSession
	}

	if *player == "" {
		*player = uuid.NewString()
	}

	game := usecase.NewGameSession(that.logger, that.dial, that.console, that.console, that.conf.MoveTimeout)
	defer game.Close()

	game.Join(ctx, *sessionID, *player)
	that.console.Printf("joined %s as %s, type \"row col\" to move or q to quit\n", *sessionID, *player)

	return console.ReadMoves(ctx, that.in, game, that.console)
}

func (that *App) link(ctx context.Context, args []string) error {
	flags := pflag.NewFlagSet("link", pflag.ContinueOnError)
	sessionID := flags.String("session", "", "session id")

	if err := flags.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}

	if *sessionID == "" {
		return ErrMissingSession
	}

	if _, err := that.sessions.Get(ctx, *sessionID); err != nil {
		return err
	}

	that.console.Printf("%s\n", that.sessions.Link(*sessionID))

	return nil
}

func (that *App) list(ctx context.Context) error {
	sessions, err := that.sessions.List(ctx)
	if err != nil {
		return err
	}

	for _, session := range sessions {
		that.console.Printf("%s\t%dx%d\t%s\t%s\n",
			session.ID, session.Size, session.Size, session.CreatedAt.Format("2006-01-02 15:04"), sessionStatus(session))
	}

	return nil
}

func sessionStatus(session *entity.Session) string {
	switch {
	case session.GameOver:
		return "finished"
	case session.IsFull():
		return "full"
	default:
		return "open"
	}
}

func newSessionRepository(ctx context.Context, conf *config.Config) (repository.SessionRepository, func() error, error) {
	if conf.SessionStore != config.StoreRedis {
		return repository.NewMemorySessionRepository(conf.SessionTTL), func() error { return nil }, nil
	}

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return nil, nil, ErrAddrNotFound
	}

	redisStorage, err := storage.NewRedisStorage(ctx, redisAddrString)
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
	}

	return repository.NewSessionRepository(redisStorage.Connection, conf.SessionTTL), redisStorage.Close, nil
}

func newDialer(logger *slog.Logger, conf *config.Config) (usecase.Dialer, error) {
	policy, err := websocket.PolicyByName(conf.ReconnectPolicy)
	if err != nil {
		return nil, err
	}

	return func(
		ctx context.Context,
		sessionID, playerID string,
		onMessage func(msg *entity.ServerMessage),
		onConnectivity func(connected bool),
	) usecase.Connection {
		return websocket.Open(ctx, logger, websocket.Options{
			BaseURL:          conf.WSServerURL,
			HandshakeTimeout: conf.HandshakeTimeout,
			Reconnect:        policy,
			OnMessage:        onMessage,
			OnConnectivity:   onConnectivity,
		}, sessionID, playerID)
	}, nil
}
