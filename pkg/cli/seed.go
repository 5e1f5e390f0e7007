package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/shelfcheck/pkg/cli/config"
	"github.com/secmon-lab/shelfcheck/pkg/usecase"
	"github.com/secmon-lab/shelfcheck/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdSeed() *cli.Command {
	var appCfg config.AppConfig
	var repoCfg config.Repository

	var flags []cli.Flag
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:  "seed",
		Usage: "Register the stores and contests of the configuration file",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if appCfg.Path() == "" {
				return goerr.Wrap(config.ErrMissingSetting, "seed requires a configuration file", goerr.V(config.FlagKey, "config"))
			}
			if err := appCfg.Configure(); err != nil {
				return goerr.Wrap(err, "failed to load configuration")
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer closeRepository(repo)

			result, err := usecase.NewCatalogUseCase(repo).Seed(ctx, appCfg.ToDomainCatalog())
			if err != nil {
				return goerr.Wrap(err, "failed to seed catalog")
			}

			logging.Default().Info("Seed completed", "stores", result.Stores, "contests", result.Brands)
			return nil
		},
	}
}
