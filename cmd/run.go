package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/mabhi256/mjvm/internal/classfile"
	"github.com/mabhi256/mjvm/internal/exec"
	"github.com/mabhi256/mjvm/internal/loader"
	"github.com/mabhi256/mjvm/internal/trace"
	"github.com/mabhi256/mjvm/utils"
	"github.com/spf13/cobra"
)

var (
	runClasspath []string
	runDebug     bool
	runGCStats   bool
)

var runCmd = &cobra.Command{
	Use:   "run <path-or-class-name>",
	Short: "Load and execute a class file's main method",
	Args:  cobra.ExactArgs(1),
	ValidArgsFunction: utils.CompleteFilesByExtension([]string{".class"}, false),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runClass(args[0], runClasspath, runDebug, runGCStats)
	},
}

func init() {
	runCmd.Flags().StringSliceVar(&runClasspath, "classpath", nil, "directory to search for class files (repeatable)")
	runCmd.Flags().StringSliceVar(&runClasspath, "cp", nil, "alias for --classpath")
	runCmd.Flags().BoolVar(&runDebug, "debug", false, "print interpreter diagnostics and GC activity as they occur")
	runCmd.Flags().BoolVar(&runGCStats, "gc-stats", false, "print a garbage collection summary after the program exits")
	rootCmd.AddCommand(runCmd)
}

// resolveClasspath builds the effective search path: explicit
// --classpath flags first, then MJVM_CLASSPATH (colon-separated),
// then the current directory as a fallback so a bare "mjvm run
// Main.class" works from a directory with no setup at all.
func resolveClasspath(flagDirs []string) []string {
	dirs := append([]string{}, flagDirs...)

	if env := os.Getenv("MJVM_CLASSPATH"); env != "" {
		dirs = append(dirs, strings.Split(env, ":")...)
	}

	if len(dirs) == 0 {
		dirs = append(dirs, ".")
	}

	return dirs
}

func runClass(target string, classpath []string, debug, gcStats bool) error {
	l := loader.New()
	for _, dir := range resolveClasspath(classpath) {
		l.AddClasspath(dir)
	}
	l.PreloadCoreClasses()

	var cf *classfile.ClassFile
	var err error
	if strings.HasSuffix(target, ".class") {
		cf, err = classfile.Parse(target)
	} else {
		cf, err = l.LoadClass(target)
	}
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", target, err)
	}

	interpreter := exec.New(l)
	interpreter.Debug = debug
	interpreter.GC.Debug = debug

	printer := trace.NewPrinter()
	interpreter.Sink = printer

	if err := interpreter.Run(cf); err != nil {
		fmt.Println(utils.MutedStyle.Render("execution finished (" + err.Error() + ")"))
	}

	if gcStats {
		trace.PrintGCStats(interpreter.GC.Ledger)
	}

	return nil
}
