package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	manifests "github.com/git-pkgs/manifests"
	_ "github.com/git-pkgs/manifests/all"
	"github.com/git-pkgs/manifests/client"
	"github.com/git-pkgs/manifests/resolve"
)

var (
	manifestPath string
	registryURL  string
	featureList  []string
	noDefaults   bool
	asLock       bool
	writeBack    bool
	verbose      bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "manifests",
		Short: "Parse, validate, and resolve package manifests",
		Long:  "manifests reads package manifests (Cargo.toml), checks their invariants, computes feature activation closures, and resolves them into concrete build plans against a registry.",
	}
	rootCmd.PersistentFlags().StringVarP(&manifestPath, "manifest", "f", "./Cargo.toml", "Manifest path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	inspectCmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show the manifest identity, features, and dependencies",
		RunE:  runInspect,
	}

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Check manifest invariants",
		RunE:  runValidate,
	}

	featuresCmd := &cobra.Command{
		Use:   "features",
		Short: "Compute the feature activation closure",
		RunE:  runFeatures,
	}
	featuresCmd.Flags().StringSliceVarP(&featureList, "enable", "e", nil, "Features to enable")
	featuresCmd.Flags().BoolVar(&noDefaults, "no-default-features", false, "Skip the default feature")

	resolveCmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve the manifest into a concrete build plan",
		RunE:  runResolve,
	}
	resolveCmd.Flags().StringVarP(&registryURL, "registry", "r", "", "Registry base URL (default: the ecosystem's public registry)")
	resolveCmd.Flags().StringSliceVarP(&featureList, "enable", "e", nil, "Features to enable")
	resolveCmd.Flags().BoolVar(&noDefaults, "no-default-features", false, "Skip the default feature")
	resolveCmd.Flags().BoolVar(&asLock, "lock", false, "Emit lockfile text instead of YAML")

	fmtCmd := &cobra.Command{
		Use:   "fmt",
		Short: "Re-encode the manifest in canonical form",
		RunE:  runFmt,
	}
	fmtCmd.Flags().BoolVarP(&writeBack, "write", "w", false, "Rewrite the manifest file in place")

	rootCmd.AddCommand(inspectCmd, validateCmd, featuresCmd, resolveCmd, fmtCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func log(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}

func load() (*manifests.Manifest, error) {
	log("Parsing manifest: %s", manifestPath)
	m, err := manifests.ParseFile(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", manifestPath, err)
	}
	return m, nil
}

type inspectOutput struct {
	Name          string              `yaml:"name"`
	Version       string              `yaml:"version"`
	Edition       string              `yaml:"edition,omitempty"`
	Description   string              `yaml:"description,omitempty"`
	License       string              `yaml:"license,omitempty"`
	Authors       []string            `yaml:"authors,omitempty"`
	Keywords      []string            `yaml:"keywords,omitempty"`
	Repository    string              `yaml:"repository,omitempty"`
	Homepage      string              `yaml:"homepage,omitempty"`
	Documentation string              `yaml:"documentation,omitempty"`
	PURL          string              `yaml:"purl"`
	Features      map[string][]string `yaml:"features,omitempty"`
	Dependencies  map[string]string   `yaml:"dependencies,omitempty"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	m, err := load()
	if err != nil {
		return err
	}

	out := inspectOutput{
		Name:          m.Package.Name,
		Version:       m.Package.Version,
		Edition:       m.Package.Edition,
		Description:   m.Package.Description,
		License:       m.Package.License,
		Authors:       m.Package.Authors,
		Keywords:      m.Package.Keywords,
		Repository:    m.Package.Repository,
		Homepage:      m.Package.Homepage,
		Documentation: m.Package.Documentation,
		PURL:          manifests.PackagePURL(m),
		Features:      m.Features,
	}
	if len(m.Dependencies) > 0 {
		out.Dependencies = make(map[string]string, len(m.Dependencies))
		for name, req := range m.Dependencies {
			summary := req.Constraint
			if req.Optional {
				summary += " (optional)"
			}
			out.Dependencies[name] = summary
		}
	}
	return yaml.NewEncoder(os.Stdout).Encode(out)
}

func runValidate(cmd *cobra.Command, args []string) error {
	m, err := load()
	if err != nil {
		return err
	}
	if err := m.Validate(); err != nil {
		return fmt.Errorf("%s: %w", manifestPath, err)
	}
	fmt.Printf("%s: OK\n", manifestPath)
	return nil
}

type featuresOutput struct {
	Features     map[string][]string         `yaml:"features"`
	Dependencies map[string]dependencyOutput `yaml:"dependencies"`
}

type dependencyOutput struct {
	DefaultFeatures bool     `yaml:"default_features"`
	Features        []string `yaml:"features,omitempty"`
}

func runFeatures(cmd *cobra.Command, args []string) error {
	m, err := load()
	if err != nil {
		return err
	}
	act, err := m.Activate(featureList, !noDefaults)
	if err != nil {
		return err
	}

	out := featuresOutput{
		Features:     make(map[string][]string, len(act.Features)),
		Dependencies: make(map[string]dependencyOutput, len(act.Dependencies)),
	}
	for _, name := range act.Features {
		out.Features[name] = m.Features[name]
	}
	for name, da := range act.Dependencies {
		out.Dependencies[name] = dependencyOutput{
			DefaultFeatures: da.DefaultFeatures,
			Features:        da.Features,
		}
	}
	return yaml.NewEncoder(os.Stdout).Encode(out)
}

func runResolve(cmd *cobra.Command, args []string) error {
	m, err := load()
	if err != nil {
		return err
	}
	act, err := m.Activate(featureList, !noDefaults)
	if err != nil {
		return err
	}

	reg := resolve.NewCratesIO(registryURL, client.DefaultClient())
	log("Resolving against %s", registryURL)
	plan, err := resolve.New(reg).Resolve(cmd.Context(), m, act)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", manifestPath, err)
	}
	log("Locked %d packages", len(plan.Packages))

	if asLock {
		return plan.WriteLock(os.Stdout)
	}
	return yaml.NewEncoder(os.Stdout).Encode(plan)
}

func runFmt(cmd *cobra.Command, args []string) error {
	m, err := load()
	if err != nil {
		return err
	}
	out, err := manifests.Encode(m)
	if err != nil {
		return err
	}
	if writeBack {
		return os.WriteFile(manifestPath, out, 0o644)
	}
	_, err = os.Stdout.Write(out)
	return err
}
