// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"al.essio.dev/pkg/shellescape"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/hashicorp/go-multierror"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/lo"

	"go.astrophena.name/prehook/cli"
	"go.astrophena.name/prehook/config"
	"go.astrophena.name/prehook/gitrepo"
	"go.astrophena.name/prehook/logger"
	"go.astrophena.name/prehook/runner"
	"go.astrophena.name/prehook/source"
)

func main() { cli.Main(new(app)) }

type app struct {
	// configured by flags
	configFile  string
	allFiles    bool
	files       string
	filesGlob   string
	stage       string
	fromRef     string
	toRef       string
	failFast    bool
	verbose     bool
	color       string
	hookTypes   string
	overwrite   bool
	hookCommand string
	jobs        int
	debug       bool
	logFile     string

	// for tests
	cloner   source.Cloner
	storeDir string
}

func (a *app) Flags(fs *flag.FlagSet) {
	fs.StringVar(&a.configFile, "config", config.DefaultFileName, "Path to the hook registry `file`.")
	fs.BoolVar(&a.allFiles, "all-files", false, "Run on all tracked files instead of staged ones.")
	fs.StringVar(&a.files, "files", "", "Comma-separated `list` of files to run on.")
	fs.StringVar(&a.filesGlob, "files-glob", "", "Run on tracked files matching the doublestar `pattern`.")
	fs.StringVar(&a.stage, "hook-stage", string(config.StagePreCommit), "Run hooks of this `stage`.")
	fs.StringVar(&a.fromRef, "from-ref", "", "Run on files changed since `ref`; needs -to-ref.")
	fs.StringVar(&a.toRef, "to-ref", "", "Run on files changed up to `ref`; needs -from-ref.")
	fs.BoolVar(&a.failFast, "fail-fast", false, "Stop after the first failing hook.")
	fs.BoolVar(&a.verbose, "verbose", false, "Show the output of every hook.")
	fs.StringVar(&a.color, "color", "auto", "Colorize status lines: `auto`, always or never.")
	fs.StringVar(&a.hookTypes, "hook-type", "", "Comma-separated Git hook `types` to install or uninstall.")
	fs.BoolVar(&a.overwrite, "overwrite", false, "Replace existing hook scripts not installed by this program.")
	fs.StringVar(&a.hookCommand, "hook-command", "", "Shell `command` installed hook scripts run. Defaults to this executable.")
	fs.IntVar(&a.jobs, "jobs", 0, "Run at most `n` invocations of a hook concurrently. Defaults to the number of CPUs.")
	fs.BoolVar(&a.debug, "v", false, "Log debug messages.")
	fs.StringVar(&a.logFile, "log-file", "", "Also write logs as JSON to `file`.")
}

var commands = map[string]func(a *app, ctx context.Context, env *cli.Env, args []string) error{
	"run":               (*app).run,
	"hook-impl":         (*app).hookImpl,
	"install":           (*app).install,
	"uninstall":         (*app).uninstall,
	"validate-config":   (*app).validateConfig,
	"validate-manifest": (*app).validateManifest,
	"plan":              (*app).plan,
	"sample-config":     (*app).sampleConfig,
	"schema":            (*app).schema,
	"clean":             (*app).clean,
	"gc":                (*app).gc,
}

func (a *app) Run(ctx context.Context) error {
	env := cli.GetEnv(ctx)

	// A logger set up by the caller is kept.
	lg := logger.Get(ctx)
	if logger.IsDefault(lg) {
		lg = logger.New(nil)
		lg.Attach(logger.ConsoleHandler(env.Stderr, lg.Level, colorful(env, env.Stderr, "auto")))
		ctx = logger.Put(ctx, lg)
	}
	if a.debug {
		logger.LevelVar(ctx).Set(slog.LevelDebug)
	}
	if a.logFile != "" {
		h, closer := logger.FileHandler(a.logFile, logger.LevelVar(ctx))
		lg.Attach(h)
		defer func() {
			lg.Detach(h)
			closer.Close()
		}()
	}

	name, args := "run", env.Args
	if len(args) > 0 {
		name, args = args[0], args[1:]
	}
	cmd, ok := commands[name]
	if !ok {
		return fmt.Errorf("%w: unknown command %q", cli.ErrInvalidArgs, name)
	}
	return cmd(a, ctx, env, args)
}

// colorful reports whether output to w should be colored given the mode
// set with -color.
func colorful(env *cli.Env, w io.Writer, mode string) bool {
	if v := env.Getenv("PREHOOK_COLOR"); v != "" && mode == "auto" {
		mode = v
	}
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	return env.Getenv("NO_COLOR") == "" && env.Getenv("CI") != "true" && cli.IsTerminalWriter(w)
}

func (a *app) openStore(env *cli.Env) (*source.Store, error) {
	cloner := a.cloner
	if cloner == nil {
		gc := source.GitCloner{}
		if a.verbose {
			gc.Progress = env.Stderr
		}
		cloner = gc
	}
	dir := a.storeDir
	if dir == "" {
		dir = source.DefaultDir(env.Getenv)
	}
	return source.Open(dir, source.WithCloner(cloner))
}

func (a *app) loadConfig(root string) (*config.Document, error) {
	p := a.configFile
	if !filepath.IsAbs(p) {
		p = filepath.Join(root, p)
	}
	return config.ParseFile(p)
}

// checkStage rejects a -hook-stage that names no stage, which would
// otherwise select no hooks at all.
func (a *app) checkStage() error {
	if !config.Stage(a.stage).Valid() {
		return fmt.Errorf("%w: unknown -hook-stage %q", cli.ErrInvalidArgs, a.stage)
	}
	return nil
}

func (a *app) run(ctx context.Context, env *cli.Env, args []string) error {
	if err := a.checkStage(); err != nil {
		return err
	}
	if len(args) > 1 {
		return fmt.Errorf("%w: run takes at most one hook id", cli.ErrInvalidArgs)
	}
	if (a.fromRef == "") != (a.toRef == "") {
		return fmt.Errorf("%w: -from-ref and -to-ref must be used together", cli.ErrInvalidArgs)
	}
	repo, err := gitrepo.Open(ctx, ".")
	if err != nil {
		return err
	}
	files, err := a.selectFiles(ctx, repo)
	if err != nil {
		return err
	}
	var hook string
	if len(args) == 1 {
		hook = args[0]
	}
	return a.runHooks(ctx, env, repo, hook, files)
}

// hookImpl is what installed hook scripts run. It receives the arguments
// Git passes to the hook and picks the files accordingly.
func (a *app) hookImpl(ctx context.Context, env *cli.Env, args []string) error {
	if err := a.checkStage(); err != nil {
		return err
	}
	repo, err := gitrepo.Open(ctx, ".")
	if err != nil {
		return err
	}
	if _, err := os.Stat(filepath.Join(repo.Root, a.configFile)); errors.Is(err, os.ErrNotExist) {
		logger.Warn(ctx, "no hook registry, skipping hooks", slog.String("file", a.configFile))
		return nil
	}

	var files []string
	switch config.Stage(a.stage).Canonical() {
	case config.StageCommitMsg, config.StagePrepareCommitMsg:
		if len(args) == 0 {
			return fmt.Errorf("%w: %s hook needs the message file", cli.ErrInvalidArgs, a.stage)
		}
		files = []string{filepath.ToSlash(args[0])}
	case config.StagePrePush:
		if files, err = pushedFiles(ctx, repo, env.Stdin); err != nil {
			return err
		}
	case config.StagePreCommit, config.StagePreMergeCommit:
		if files, err = repo.StagedFiles(ctx); err != nil {
			return err
		}
	default:
		if files, err = repo.AllFiles(ctx); err != nil {
			return err
		}
	}
	return a.runHooks(ctx, env, repo, "", files)
}

const zeroSHA = "0000000000000000000000000000000000000000"

// pushedFiles reads the refs being pushed from a pre-push hook's standard
// input and returns the files they change.
func pushedFiles(ctx context.Context, repo *gitrepo.Repo, stdin io.Reader) ([]string, error) {
	var files []string
	sc := bufio.NewScanner(stdin)
	for sc.Scan() {
		// <local ref> <local sha> <remote ref> <remote sha>
		fields := strings.Fields(sc.Text())
		if len(fields) != 4 || fields[1] == zeroSHA {
			continue
		}
		var (
			changed []string
			err     error
		)
		if fields[3] == zeroSHA {
			changed, err = repo.AllFiles(ctx)
		} else {
			changed, err = repo.ChangedFiles(ctx, fields[3], fields[1])
		}
		if err != nil {
			return nil, err
		}
		files = append(files, changed...)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return lo.Uniq(files), nil
}

func (a *app) selectFiles(ctx context.Context, repo *gitrepo.Repo) ([]string, error) {
	switch {
	case a.files != "":
		return lo.FilterMap(strings.Split(a.files, ","), func(f string, _ int) (string, bool) {
			f = strings.TrimSpace(f)
			return path.Clean(filepath.ToSlash(f)), f != ""
		}), nil
	case a.filesGlob != "":
		all, err := repo.AllFiles(ctx)
		if err != nil {
			return nil, err
		}
		var matched []string
		for _, f := range all {
			ok, err := doublestar.Match(a.filesGlob, f)
			if err != nil {
				return nil, fmt.Errorf("%w: -files-glob: %v", cli.ErrInvalidArgs, err)
			}
			if ok {
				matched = append(matched, f)
			}
		}
		return matched, nil
	case a.allFiles:
		return repo.AllFiles(ctx)
	case a.fromRef != "":
		return repo.ChangedFiles(ctx, a.fromRef, a.toRef)
	}
	return repo.StagedFiles(ctx)
}

func (a *app) runHooks(ctx context.Context, env *cli.Env, repo *gitrepo.Repo, hook string, files []string) error {
	doc, err := a.loadConfig(repo.Root)
	if err != nil {
		return err
	}
	store, err := a.openStore(env)
	if err != nil {
		return err
	}
	resolved, err := store.Resolve(ctx, doc)
	if err != nil {
		return err
	}
	r := runner.New(doc, runner.Options{
		Stage:    config.Stage(a.stage),
		Hook:     hook,
		Skip:     parseList(env.Getenv("SKIP")),
		FailFast: a.failFast,
		Verbose:  a.verbose,
		Color:    colorful(env, env.Stdout, a.color),
		Width:    cli.TerminalWidth(env.Stdout),
		Root:     repo.Root,
		Stdout:   env.Stdout,
		Differ:   repo,
		Lister:   repo,
		Store:    store,
		Jobs:     a.jobs,
	})
	_, err = r.Run(ctx, runner.Plan(resolved), files)
	return err
}

func parseList(s string) []string {
	return lo.Compact(lo.Map(strings.Split(s, ","), func(v string, _ int) string {
		return strings.TrimSpace(v)
	}))
}

func (a *app) installStages(ctx context.Context, root string) []config.Stage {
	if a.hookTypes != "" {
		return lo.Map(parseList(a.hookTypes), func(s string, _ int) config.Stage { return config.Stage(s) })
	}
	if doc, err := a.loadConfig(root); err == nil && len(doc.DefaultInstallHookTypes) > 0 {
		return doc.DefaultInstallHookTypes
	} else if err != nil {
		logger.Debug(ctx, "using default hook types", slog.Any("err", err))
	}
	return []config.Stage{config.StagePreCommit}
}

func (a *app) scriptCommand() (string, error) {
	if a.hookCommand != "" {
		return a.hookCommand, nil
	}
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return shellescape.Quote(exe), nil
}

func (a *app) install(ctx context.Context, env *cli.Env, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("%w: install takes no arguments", cli.ErrInvalidArgs)
	}
	repo, err := gitrepo.Open(ctx, ".")
	if err != nil {
		return err
	}
	dir, err := repo.HooksDir(ctx)
	if err != nil {
		return err
	}
	command, err := a.scriptCommand()
	if err != nil {
		return err
	}
	for _, stage := range a.installStages(ctx, repo.Root) {
		p, err := gitrepo.InstallHook(dir, stage, command, a.overwrite)
		if err != nil {
			return err
		}
		fmt.Fprintf(env.Stdout, "installed %s\n", p)
	}
	return nil
}

func (a *app) uninstall(ctx context.Context, env *cli.Env, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("%w: uninstall takes no arguments", cli.ErrInvalidArgs)
	}
	repo, err := gitrepo.Open(ctx, ".")
	if err != nil {
		return err
	}
	dir, err := repo.HooksDir(ctx)
	if err != nil {
		return err
	}
	for _, stage := range a.installStages(ctx, repo.Root) {
		removed, err := gitrepo.UninstallHook(dir, stage)
		if err != nil {
			return err
		}
		if removed {
			fmt.Fprintf(env.Stdout, "uninstalled %s\n", stage.Canonical())
		}
	}
	return nil
}

func (a *app) validateConfig(ctx context.Context, env *cli.Env, args []string) error {
	if len(args) == 0 {
		args = []string{a.configFile}
	}
	return validate(ctx, args, func(p string) error {
		_, err := config.ParseFile(p)
		return err
	})
}

func (a *app) validateManifest(ctx context.Context, env *cli.Env, args []string) error {
	if len(args) == 0 {
		args = []string{config.ManifestFileName}
	}
	return validate(ctx, args, func(p string) error {
		_, err := config.ParseManifestFile(p)
		return err
	})
}

// validate checks every file and reports all problems together.
func validate(ctx context.Context, files []string, check func(string) error) error {
	var errs *multierror.Error
	for _, f := range files {
		if err := check(f); err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		logger.Debug(ctx, "valid", slog.String("file", f))
	}
	return errs.ErrorOrNil()
}

func (a *app) plan(ctx context.Context, env *cli.Env, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("%w: plan takes no arguments", cli.ErrInvalidArgs)
	}
	repo, err := gitrepo.Open(ctx, ".")
	if err != nil {
		return err
	}
	doc, err := a.loadConfig(repo.Root)
	if err != nil {
		return err
	}
	store, err := a.openStore(env)
	if err != nil {
		return err
	}
	resolved, err := store.Resolve(ctx, doc)
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "source", "id", "stages", "types", "pass filenames", "entry"})
	for i, step := range runner.Plan(resolved) {
		types := append(append([]string{}, step.Hook.Types...), lo.Map(step.Hook.TypesOr, func(s string, _ int) string { return "|" + s })...)
		t.AppendRow(table.Row{
			i + 1,
			step.Source.Repo,
			step.Hook.ID,
			strings.Join(lo.Map(step.Stages(doc), func(s config.Stage, _ int) string { return string(s) }), ","),
			strings.Join(types, ","),
			step.Hook.PassesFilenames(),
			shellescape.QuoteCommand(append([]string{step.Hook.Entry}, step.Hook.Args...)),
		})
	}
	fmt.Fprintln(env.Stdout, t.Render())
	return nil
}

func (a *app) sampleConfig(ctx context.Context, env *cli.Env, args []string) error {
	_, err := env.Stdout.Write(config.Sample())
	return err
}

// schema prints the JSON Schema documents are checked against, for use by
// editors.
func (a *app) schema(ctx context.Context, env *cli.Env, args []string) error {
	_, err := env.Stdout.Write(config.Schema())
	return err
}

func (a *app) clean(ctx context.Context, env *cli.Env, args []string) error {
	store, err := a.openStore(env)
	if err != nil {
		return err
	}
	if err := store.Clean(ctx); err != nil {
		return err
	}
	fmt.Fprintf(env.Stdout, "removed %s\n", store.Dir())
	return nil
}

func (a *app) gc(ctx context.Context, env *cli.Env, args []string) error {
	store, err := a.openStore(env)
	if err != nil {
		return err
	}
	n, err := store.GC(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(env.Stdout, "%d unused checkout(s) removed\n", n)
	return nil
}
