package cmd

import (
	"fmt"
	"strings"

	"github.com/mabhi256/mjvm/internal/classfile"
	"github.com/mabhi256/mjvm/internal/debugger"
	"github.com/mabhi256/mjvm/internal/exec"
	"github.com/mabhi256/mjvm/internal/loader"
	"github.com/mabhi256/mjvm/utils"
	"github.com/spf13/cobra"
)

var debugClasspath []string

var debugCmd = &cobra.Command{
	Use:               "debug <path-or-class-name>",
	Short:             "Step through a class file's main method in an interactive TUI",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: utils.CompleteFilesByExtension([]string{".class"}, false),
	RunE: func(cmd *cobra.Command, args []string) error {
		return debugClass(args[0], debugClasspath)
	},
}

func init() {
	debugCmd.Flags().StringSliceVar(&debugClasspath, "classpath", nil, "directory to search for class files (repeatable)")
	debugCmd.Flags().StringSliceVar(&debugClasspath, "cp", nil, "alias for --classpath")
	rootCmd.AddCommand(debugCmd)
}

func debugClass(target string, classpath []string) error {
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

	method, err := cf.FindMethod("main", "")
	if err != nil {
		return err
	}

	interp := exec.New(l)
	return debugger.Run(interp, cf, method)
}
