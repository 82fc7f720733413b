// Package loader resolves class names to decoded class files, probing
// a configured classpath and caching every class it has already
// loaded.
package loader

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mabhi256/mjvm/internal/classfile"
)

// ClassLoader maps class names to ClassFile, reading from disk only on
// first request and caching the result for every later lookup
// (including transitive superclass preloads).
type ClassLoader struct {
	searchPaths []string
	cache       map[string]*classfile.ClassFile
}

func New() *ClassLoader {
	return &ClassLoader{cache: make(map[string]*classfile.ClassFile)}
}

// AddClasspath registers a directory to probe when resolving a class
// name. Directories are probed in the order they were added; the
// first one containing the requested .class file wins.
func (l *ClassLoader) AddClasspath(dir string) {
	l.searchPaths = append(l.searchPaths, dir)
}

// LoadClass resolves name (dotted or already slash-separated) to a
// decoded class file, loading it from the classpath on first request
// and its superclass chain transitively (stopping before
// java/lang/Object, which is never loaded as a superclass) so
// field/method inheritance lookups never hit a missing link later.
func (l *ClassLoader) LoadClass(name string) (*classfile.ClassFile, error) {
	name = strings.ReplaceAll(name, ".", "/")

	if cf, ok := l.cache[name]; ok {
		return cf, nil
	}

	path, err := l.resolve(name)
	if err != nil {
		return nil, err
	}

	cf, err := classfile.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	// Cache before recursing into the superclass so a cyclical or
	// self-referential hierarchy (should one ever occur) can't loop.
	l.cache[name] = cf

	superName, err := cf.SuperName()
	if err != nil {
		return nil, fmt.Errorf("class %s: %w", name, err)
	}
	if superName != "" && superName != "java/lang/Object" {
		if _, err := l.LoadClass(superName); err != nil {
			return nil, fmt.Errorf("class %s: failed to load superclass %s: %w", name, superName, err)
		}
	}

	return cf, nil
}

// PreloadCoreClasses loads the handful of classes the native bridge
// assumes are resolvable even when a user class file never references
// them directly by constant-pool entry (e.g. a bare println call
// whose owner class never appears as a Methodref). Missing core
// classes are tolerated: user programs routinely run against a
// classpath with no java/lang tree on disk at all, relying entirely
// on the native bridge instead.
func (l *ClassLoader) PreloadCoreClasses() {
	for _, name := range []string{"java/lang/Object", "java/lang/String", "java/lang/System", "java/lang/Math", "java/io/PrintStream"} {
		l.LoadClass(name)
	}
}

func (l *ClassLoader) resolve(name string) (string, error) {
	fileName := name + ".class"
	for _, dir := range l.searchPaths {
		candidate := filepath.Join(dir, fileName)
		if fileExists(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("class not found: %s", name)
}
