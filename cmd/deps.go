package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/talentmatch/internal/backend"
	"github.com/spigell/talentmatch/internal/logger"
	"github.com/spigell/talentmatch/internal/resources"
	"github.com/spigell/talentmatch/internal/session"
)

// deps is what a command needs to reach the backend on behalf of the stored session.
type deps struct {
	config  *Config
	logger  *zap.Logger
	client  *backend.Client
	matcher *backend.Client
	store   session.Store
	session *resources.Session
	out     io.Writer
}

// mustDeps builds deps for cmd or exits. Logger failures go to the standard
// logger since there is nothing better yet.
func mustDeps(ctx context.Context, cmd *cobra.Command) *deps {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	d, err := newDeps(ctx, logger, cmd.OutOrStdout())
	if err != nil {
		logger.Fatal("preparing the client", zap.Error(err))
	}

	return d
}

func newDeps(ctx context.Context, log *zap.Logger, out io.Writer) (*deps, error) {
	config, err := getConfig()
	if err != nil {
		return nil, fmt.Errorf("getting a config: %w", err)
	}
	if config == nil {
		config = &Config{}
	}

	client := backend.New(log, config.APIURL, config.Timeout)
	matcher := backend.New(log, config.MatchURL, config.Timeout)
	if config.UserAgent != "" {
		client.UserAgent = config.UserAgent
		matcher.UserAgent = config.UserAgent
	}

	store, err := session.NewStore(ctx, config.Session)
	if err != nil {
		return nil, fmt.Errorf("opening session store: %w", err)
	}

	sess, err := resources.NewSession(ctx, client, store, log)
	if err != nil {
		return nil, err
	}

	d := &deps{
		config:  config,
		logger:  log,
		client:  client,
		matcher: matcher,
		store:   store,
		session: sess,
		out:     out,
	}
	d.checkToken()

	if fs, ok := store.(*session.FileStore); ok {
		log.Debug("session file", zap.String("path", fs.Path()))
	}

	log.Debug("client ready",
		zap.String("api", client.APIURL),
		zap.String("match", matcher.APIURL),
		zap.Bool("token", sess.Token() != ""),
	)

	return d, nil
}

// checkToken warns about a stored token that can no longer be used. The
// backend stays the authority, so nothing is removed here.
func (d *deps) checkToken() {
	token := d.session.Token()
	if token == "" {
		return
	}

	claims, err := session.ParseClaims(token)
	if err != nil {
		d.logger.Warn("stored token is not a jwt", zap.Error(err))
		return
	}

	if claims.Expired(time.Now()) {
		d.logger.Warn("stored token has expired, log in again",
			zap.Time("expired_at", claims.ExpiresAt),
		)
	}
}

func (d *deps) token() string {
	return d.session.Token()
}

func (d *deps) print(v any) {
	if err := writeOutput(d.out, d.config.Output, v); err != nil {
		d.logger.Fatal("printing result", zap.Error(err))
	}
}

func (d *deps) close() {
	closer, ok := d.store.(io.Closer)
	if !ok {
		return
	}
	if err := closer.Close(); err != nil {
		d.logger.Warn("closing session store", zap.Error(err))
	}
}

func (d *deps) jobs() *resources.Jobs {
	return resources.NewJobs(d.client, d.token(), d.logger)
}

func (d *deps) projects() *resources.Projects {
	return resources.NewProjects(d.client, d.token(), d.logger)
}

func (d *deps) history() *resources.History {
	return resources.NewHistory(d.client, d.token(), d.logger)
}

func (d *deps) scraper() *resources.Scraper {
	return resources.NewScraper(d.client, d.token(), d.logger)
}

func (d *deps) newMatcher() *resources.Matcher {
	return resources.NewMatcher(d.matcher, d.token(), d.logger)
}
