package cmd

import (
	"fmt"
	"reflect"
	"runtime/debug"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hyperledger-labs/namada-relayer/config"
)

func modulesCmd(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "modules",
		Short: "show the modules of the relayer",
		RunE:  noCommand,
	}

	cmd.AddCommand(
		showModulesCmd(ctx),
	)

	return cmd
}

// moduleInfo describes a registered module and the configured chains it serves
type moduleInfo struct {
	Name    string   `json:"name"`
	Path    string   `json:"path"`
	Version string   `json:"version"`
	Chains  []string `json:"chains,omitempty"`
}

func showModulesCmd(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Shows the modules included in the relayer with their configured chains",
		RunE: func(cmd *cobra.Command, args []string) error {
			bi, ok := debug.ReadBuildInfo()
			if !ok {
				return fmt.Errorf("could not read build info")
			}
			infos, err := moduleInfos(bi, ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd, infos)
		},
	}
	return yamlFlag(cmd)
}

func moduleInfos(bi *debug.BuildInfo, ctx *config.Context) ([]moduleInfo, error) {
	infos := make([]moduleInfo, 0, len(ctx.Modules))
	for _, m := range ctx.Modules {
		path, version, err := findModuleVersion(bi, reflect.TypeOf(m).PkgPath())
		if err != nil {
			return nil, fmt.Errorf("module %s: %w", m.Name(), err)
		}
		info := moduleInfo{Name: m.Name(), Path: path, Version: version}
		if ctx.Config != nil {
			for _, entry := range ctx.Config.Chains {
				if entry.Type != m.Name() {
					continue
				}
				if chain, err := entry.GetChainConfig(); err == nil {
					info.Chains = append(info.Chains, chain.ChainID())
				}
			}
		}
		infos = append(infos, info)
	}
	slices.SortFunc(infos, func(a, b moduleInfo) int { return strings.Compare(a.Name, b.Name) })
	return infos, nil
}

// findModuleVersion returns the go module containing pkgPath
func findModuleVersion(bi *debug.BuildInfo, pkgPath string) (string, string, error) {
	if bi == nil {
		return "", "", fmt.Errorf("build info is unavailable")
	}
	if strings.HasPrefix(pkgPath, bi.Main.Path) {
		return bi.Main.Path, bi.Main.Version, nil
	}
	i := slices.IndexFunc(bi.Deps, func(dm *debug.Module) bool {
		return strings.HasPrefix(pkgPath, dm.Path)
	})
	if i == -1 {
		return "", "", fmt.Errorf("no go module contains %s", pkgPath)
	}
	dep := bi.Deps[i]
	if dep.Replace != nil {
		dep = dep.Replace
	}
	return dep.Path, dep.Version, nil
}
