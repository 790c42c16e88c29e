package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/chazu/cubed/pkg/decomp"
	"github.com/chazu/cubed/pkg/kernel"
	"github.com/chazu/cubed/pkg/kernel/manifold"
	"github.com/chazu/cubed/pkg/kernel/sdfx"
	"github.com/chazu/cubed/pkg/tessellate"
)

type exportOptions struct {
	dx        float64
	out       string
	assembled bool
	cells     int
	kernel    string
}

// newKernel returns the geometry kernel named by --kernel.
func newKernel(name string, cells int) (kernel.Kernel, error) {
	switch name {
	case "sdfx":
		return sdfx.NewWithCells(cells), nil
	case "manifold":
		return manifold.New()
	}
	return nil, fmt.Errorf("unknown kernel %q, expected sdfx or manifold", name)
}

func newExportCmd() *cobra.Command {
	var opts exportOptions

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the decomposition at a given dx as STL files",
		Long: `Export meshes every solid at its pose for --dx and writes one STL file per
solid into --out. With --assembled the pieces are unioned into a single
cubed.stl instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			cfg := configFromContext(ctx)

			st, err := decomp.NewState(cfg)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("dx") {
				if _, err := st.Update(opts.dx); err != nil {
					return err
				}
			}

			k, err := newKernel(opts.kernel, opts.cells)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(opts.out, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}

			prog := newProgress(logger)
			paths, err := export(st, k, opts)
			if err != nil {
				return err
			}
			for _, p := range paths {
				logger.Debug("wrote", "path", p)
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			prog.done(fmt.Sprintf("Exported %d files at dx=%g", len(paths), st.CurrentDx()))
			return nil
		},
	}

	cmd.Flags().Float64Var(&opts.dx, "dx", 0, "dx to export at (default: initial dx)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", ".", "output directory")
	cmd.Flags().BoolVar(&opts.assembled, "assembled", false, "write a single unioned STL")
	cmd.Flags().IntVar(&opts.cells, "cells", sdfx.DefaultMeshCells, "marching cubes cells along the longest axis (sdfx)")
	cmd.Flags().StringVar(&opts.kernel, "kernel", "sdfx", "geometry kernel: sdfx or manifold")
	return cmd
}

// export writes STL files for st at its current dx and returns their paths.
func export(st *decomp.State, k kernel.Kernel, opts exportOptions) ([]string, error) {
	cfg, l, dx := st.Config(), st.Layout(), st.CurrentDx()

	if opts.assembled {
		solid, err := tessellate.Assemble(cfg, l, dx, k)
		if err != nil {
			return nil, err
		}
		path := filepath.Join(opts.out, "cubed.stl")
		if err := k.ExportSTL(solid, path); err != nil {
			return nil, err
		}
		return []string{path}, nil
	}

	pieces := tessellate.Pieces(cfg, l, dx, k)
	names := make([]string, 0, len(pieces))
	for name := range pieces {
		names = append(names, name)
	}
	sort.Strings(names)

	paths := make([]string, 0, len(names))
	for _, name := range names {
		path := filepath.Join(opts.out, name+".stl")
		if err := k.ExportSTL(pieces[name], path); err != nil {
			return paths, fmt.Errorf("export %s: %w", name, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
