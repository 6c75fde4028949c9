package cli

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ralt/xpkg/internal/models"
	"github.com/ralt/xpkg/internal/pattern"
	"github.com/ralt/xpkg/internal/repo"
)

type resolveConfig struct {
	Repositories []string
	Keyring      string
	Signed       bool
	Best         bool
	Exact        bool
}

// NewResolveCmd creates the resolve command
func NewResolveCmd() *cobra.Command {
	var config resolveConfig

	cmd := &cobra.Command{
		Use:   "resolve <name|pattern|pkgver>",
		Short: "Resolve a package against the repository pool",
		Long: `Resolves a package name, a "name<op>version" pattern or an exact
pkgver against the configured repositories, in order, and prints the
winning package version and its origin repository.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateResolveConfig(&config); err != nil {
				return err
			}

			pool, err := repo.LoadPool(config.Repositories, repo.LoadOptions{
				KeyringPath:   config.Keyring,
				RequireSigned: config.Signed,
			})
			if err != nil {
				return err
			}

			target := args[0]
			pkgd, err := resolveTarget(pool, target, &config)
			if err != nil {
				return err
			}
			if pkgd == nil {
				return &models.PkgError{
					Kind: models.ErrNotFound,
					Err:  fmt.Errorf("package '%s' not found in repository pool", target),
				}
			}

			fmt.Printf("%s (%s)\n", pkgd.Pkgver, pkgd.Repository)
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&config.Repositories, "repository", "r", nil, "Repository directory (repeatable, ordered)")
	cmd.Flags().StringVar(&config.Keyring, "keyring", "", "Armored public keyring for index signature verification")
	cmd.Flags().BoolVar(&config.Signed, "signed", false, "Require a verifiable index signature")
	cmd.Flags().BoolVar(&config.Best, "best", false, "Pick the highest version across all repositories")
	cmd.Flags().BoolVar(&config.Exact, "exact", false, "Treat the argument as an exact pkgver")

	return cmd
}

func validateResolveConfig(config *resolveConfig) error {
	if len(config.Repositories) == 0 {
		return &models.PkgError{
			Kind: models.ErrInvalidConfig,
			Err:  fmt.Errorf("at least one --repository is required"),
		}
	}
	if config.Signed && config.Keyring == "" {
		return &models.PkgError{
			Kind: models.ErrInvalidConfig,
			Err:  fmt.Errorf("--signed requires --keyring"),
		}
	}
	return nil
}

func resolveTarget(pool repo.Pool, target string, config *resolveConfig) (*models.PackageDescriptor, error) {
	byPattern := pattern.IsPattern(target)
	logrus.Debugf("resolving '%s' (pattern: %t, best: %t, exact: %t)",
		target, byPattern, config.Best, config.Exact)

	switch {
	case config.Exact:
		return pool.FindExact(target, "")
	case config.Best:
		return pool.FindBest(target, byPattern)
	default:
		return pool.Find(target, byPattern)
	}
}
