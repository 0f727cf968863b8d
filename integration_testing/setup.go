//go:build integration_test || all_tests

package integration_testing

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/2beens/notesservice/internal"
	"github.com/2beens/notesservice/internal/config"

	"github.com/go-redis/redis/v8"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
)

const (
	serverHost             = "127.0.0.1"
	notesCreateLimitPerMin = 2
)

type Suite struct {
	dockerPool     *dockertest.Pool
	server         *internal.Server
	serverEndpoint string
	teardown       []func()
}

func newSuite(ctx context.Context) *Suite {
	var err error
	suite := &Suite{
		teardown: make([]func(), 0),
	}

	// uses a sensible default on windows (tcp/http) and linux/osx (socket)
	suite.dockerPool, err = dockertest.NewPool("")
	if err != nil {
		log.Fatalf("could not create new dockertest pool: %s", err)
	}

	// uses pool to try to connect to Docker
	if err = suite.dockerPool.Client.Ping(); err != nil {
		log.Fatalf("could not ping dockertest pool: %s", err)
	}

	redisPort, err := suite.redisSetup()
	if err != nil {
		suite.cleanup()
		log.Fatalf("failed to setup redis: %s", err)
	}

	cfg := getTestConfig(redisPort)
	suite.server, err = internal.NewServer(
		ctx,
		internal.NewServerParams{
			Config:                  cfg,
			VersionInfo:             "test-version-info",
			RedisPassword:           "",
			HoneycombTracingEnabled: false,
		},
	)
	if err != nil {
		suite.cleanup()
		log.Fatalf("new server: %s", err)
	}

	if err := suite.server.Serve(cfg.Host, cfg.Port); err != nil {
		suite.cleanup()
		log.Fatalf("serve: %s", err)
	}
	suite.serverEndpoint = fmt.Sprintf("http://%s", suite.server.Addr())

	return suite
}

func (s *Suite) cleanup() {
	for _, teardown := range s.teardown {
		teardown()
	}
	if s.server != nil {
		s.server.GracefulShutdown()
	}
}

func getTestConfig(redisPort string) *config.Config {
	cfg := config.Default()
	cfg.Host = serverHost
	cfg.Port = 0
	cfg.StaticDir = ""
	cfg.RedisHost = "localhost"
	cfg.RedisPort = redisPort
	cfg.NotesCreateLimitPerMin = notesCreateLimitPerMin
	return cfg
}

func (s *Suite) redisSetup() (string, error) {
	redisResource, err := s.dockerPool.RunWithOptions(&dockertest.RunOptions{
		Repository: "redis",
		Name:       "notes-redis",
		Tag:        "6.2",
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{
			Name: "no",
		}
	})
	if err != nil {
		return "", fmt.Errorf("run redis: %s", err)
	}

	s.teardown = append(s.teardown, func() {
		redisResource.Close()
	})

	redisPort := redisResource.GetPort("6379/tcp")

	// the container takes a moment before it accepts connections
	s.dockerPool.MaxWait = 30 * time.Second
	if err := s.dockerPool.Retry(func() error {
		rdb := redis.NewClient(&redis.Options{Addr: "localhost:" + redisPort})
		defer rdb.Close()
		return rdb.Ping(context.Background()).Err()
	}); err != nil {
		return "", fmt.Errorf("wait for redis: %s", err)
	}

	return redisPort, nil
}
