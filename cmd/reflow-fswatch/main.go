// Package main watches a directory tree through the filesystem environment
// and reports refresh passes as files change. It registers one observer
// that tracks the total size of the tree, so a pass only counts as a
// delivery when the size actually moved.
package main

import (
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/go-drift/reflow/pkg/fsenv"
	"github.com/go-drift/reflow/pkg/reflow"
)

// sizeObserver treats the byte total of the watched tree as its observed
// geometry. It reports a change when the total differs from the last
// broadcast value.
type sizeObserver struct {
	root     string
	gathered int64
	reported int64
	primed   bool
}

func (o *sizeObserver) GatherActive() {
	o.gathered = treeSize(o.root)
}

func (o *sizeObserver) HasActive() bool {
	return !o.primed || o.gathered != o.reported
}

func (o *sizeObserver) BroadcastActive() {
	fmt.Printf("tree size: %d bytes (was %d)\n", o.gathered, o.reported)
	o.reported = o.gathered
	o.primed = true
}

func treeSize(root string) int64 {
	var total int64
	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			total += info.Size()
		}
		return nil
	})
	return total
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: reflow-fswatch <directory>\n")
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	root, err := filepath.Abs(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		fmt.Fprintf(os.Stderr, "Error: %s is not a directory\n", root)
		os.Exit(1)
	}

	env := fsenv.New(root)
	defer env.Close()

	ctrl := reflow.NewController(reflow.Config{Environment: env})
	ctrl.SetTraceFunc(func(trace reflow.PassTrace) {
		fmt.Printf("pass %d: %.2fms, %d/%d observers with changes\n",
			trace.Seq, trace.PassMs, trace.Active, trace.Observers)
	})

	observer := &sizeObserver{root: root}
	ctrl.AddObserver(observer, root)
	defer ctrl.RemoveObserver(observer, root)

	if env.SupportsMutationWatch() {
		fmt.Printf("watching %s (native notifications)\n", root)
	} else {
		fmt.Printf("watching %s (polling fallback)\n", root)
	}
	ctrl.Refresh()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	fmt.Println("\nshutting down")
}
