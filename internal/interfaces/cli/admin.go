package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turtacn/AutoGift-Intelligence/internal/infrastructure/database/postgres"
	"github.com/turtacn/AutoGift-Intelligence/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/AutoGift-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/AutoGift-Intelligence/pkg/errors"
	"github.com/turtacn/AutoGift-Intelligence/pkg/types/common"
)

// Migrator applies schema migrations from a source directory.
type Migrator interface {
	Up(dbURL, path string) error
	Down(dbURL, path string, steps int) error
	Status(dbURL, path string) (version uint, dirty bool, err error)
}

type postgresMigrator struct{}

func (postgresMigrator) Up(dbURL, path string) error { return postgres.RunMigrations(dbURL, path) }

func (postgresMigrator) Down(dbURL, path string, steps int) error {
	return postgres.RollbackMigration(dbURL, path, steps)
}

func (postgresMigrator) Status(dbURL, path string) (uint, bool, error) {
	return postgres.MigrationStatus(dbURL, path)
}

// TopicEnsurer creates topics that do not exist yet.
type TopicEnsurer interface {
	EnsureTopics(ctx context.Context, topics []common.TopicConfig) error
	Close() error
}

// TopicManagerFactory connects a TopicEnsurer to brokers.
type TopicManagerFactory func(brokers []string, logger logging.Logger) (TopicEnsurer, error)

func openTopicManager(brokers []string, logger logging.Logger) (TopicEnsurer, error) {
	m, err := kafka.NewTopicManager(brokers, logger)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func newMigrateCmd(deps Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the PostgreSQL schema",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			pg := cc.Config.Database.Postgres
			if err := deps.Migrator.Up(postgres.BuildDSN(pg), pg.MigrationPath); err != nil {
				return err
			}
			PrintSuccess(cmd, "migrations applied")
			return nil
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back applied migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if steps <= 0 {
				return errors.InvalidParam(fmt.Sprintf("--steps must be positive, got %d", steps))
			}
			cc, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			pg := cc.Config.Database.Postgres
			if err := deps.Migrator.Down(postgres.BuildDSN(pg), pg.MigrationPath, steps); err != nil {
				return err
			}
			PrintSuccess(cmd, fmt.Sprintf("rolled back %d migration(s)", steps))
			return nil
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	status := &cobra.Command{
		Use:   "status",
		Short: "Show the applied schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			pg := cc.Config.Database.Postgres
			version, dirty, err := deps.Migrator.Status(postgres.BuildDSN(pg), pg.MigrationPath)
			if err != nil {
				return err
			}
			return PrintResult(cmd, migrationStatus{Version: version, Dirty: dirty})
		},
	}

	cmd.AddCommand(up, down, status)
	return cmd
}

type migrationStatus struct {
	Version uint `json:"version"`
	Dirty   bool `json:"dirty"`
}

func (s migrationStatus) String() string {
	if s.Dirty {
		return fmt.Sprintf("version %d (dirty)\n", s.Version)
	}
	return fmt.Sprintf("version %d\n", s.Version)
}

func newTopicsCmd(deps Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "topics",
		Short: "Manage the engine's Kafka topics",
	}

	var replication int
	ensure := &cobra.Command{
		Use:   "ensure",
		Short: "Create the scan, opportunity and dead-letter topics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			kc := cc.Config.Messaging.Kafka
			mgr, err := deps.Topics(kc.Brokers, cc.Logger)
			if err != nil {
				return err
			}
			defer mgr.Close()

			ctx := cmd.Context()
			if cc.Timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, cc.Timeout)
				defer cancel()
			}
			topics := kafka.DefaultTopics(kc, replication)
			if err := mgr.EnsureTopics(ctx, topics); err != nil {
				return err
			}
			for _, t := range topics {
				PrintSuccess(cmd, fmt.Sprintf("topic %s (%d partitions)", t.Name, t.Partitions))
			}
			return nil
		},
	}
	ensure.Flags().IntVar(&replication, "replication", 1, "replication factor for new topics")

	cmd.AddCommand(ensure)
	return cmd
}

//Personal.AI order the ending
