package uvpaint

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/uvpaint/uvpaint/utils"
)

// maxWorkers sets the maximum number of concurrently replayed scripts.
const maxWorkers = 20

// ScriptExtensions are the file extensions recognized as replay scripts.
var ScriptExtensions = []string{".yaml", ".yml"}

// Job replays a single script on its own session.
type Job struct {
	Script string
	Config SessionConfig
	// Interval is the delay between two ticks.
	Interval time.Duration
	// LoadLast reloads the last saved texture before replaying.
	LoadLast bool
	// SaveOnExit saves the canvas once the script is over.
	SaveOnExit bool
	// Color is the brush color of scripts not setting one. White when nil.
	Color *Color
}

// Result holds the outcome of a replayed script.
type Result struct {
	Script  string
	Frames  int
	Ref     Ref // last texture saved during the replay
	Elapsed time.Duration
	Err     error
}

// Run replays the script and reports the outcome.
func (j *Job) Run(ctx context.Context) (res Result) {
	now := time.Now()
	res.Script = j.Script
	defer func() { res.Elapsed = time.Since(now) }()

	script, err := LoadScript(j.Script)
	if err != nil {
		res.Err = err
		return res
	}
	color := White
	if j.Color != nil {
		color = *j.Color
	}
	src, err := NewScriptSource(script, color)
	if err != nil {
		res.Err = err
		return res
	}

	var saveErr error
	cfg := j.Config
	onSave := cfg.OnSave
	cfg.OnSave = func(ref Ref, err error) {
		saveErr = err
		if err == nil {
			res.Ref = ref
		}
		if onSave != nil {
			onSave(ref, err)
		}
	}

	sess, err := NewSession(cfg)
	if err != nil {
		res.Err = err
		return res
	}
	defer sess.Close()

	if j.LoadLast && sess.LoadLastSaved() {
		if err := sess.Settle(ctx); err != nil {
			res.Err = err
			return res
		}
	}

	sched := &Scheduler{Session: sess, Interval: j.Interval}
	res.Frames, err = sched.Run(ctx, src)
	if err == nil {
		err = src.Err()
	}
	if err == nil && j.SaveOnExit {
		saveErr = nil
		sess.SaveTexture()
		if err = sess.Settle(ctx); err == nil {
			err = saveErr
		}
	}
	res.Err = err
	return res
}

// RunBatch replays every script found under the src directory concurrently.
// newJob builds the job of a script, out being the script's texture path inside dst.
// The results channel is closed once every script is replayed; the error channel
// then reports the outcome of the directory walk.
func RunBatch(
	ctx context.Context,
	src, dst string,
	workers int,
	newJob func(script, out string) *Job,
) (<-chan Result, <-chan error) {
	if err := os.MkdirAll(dst, 0o755); err != nil {
		res := make(chan Result)
		close(res)
		errc := make(chan error, 1)
		errc <- err
		return res, errc
	}

	// Limit the concurrently running workers to maxWorkers.
	if workers <= 0 || workers > maxWorkers {
		workers = runtime.NumCPU()
	}

	ch := make(chan Result)
	done := make(chan any)
	paths, errc := walkDir(done, src, ScriptExtensions)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			consumer(ctx, dst, ch, done, paths, newJob)
		}()
	}

	// Close the channel after the values are consumed.
	go func() {
		defer close(ch)
		defer close(done)
		wg.Wait()
	}()
	return ch, errc
}

// consumer reads the script paths from the paths channel and replays them.
func consumer(
	ctx context.Context,
	dest string,
	res chan<- Result,
	done <-chan any,
	paths <-chan string,
	newJob func(script, out string) *Job,
) {
	for src := range paths {
		name := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
		job := newJob(src, filepath.Join(dest, name))

		select {
		case <-done:
			return
		case res <- job.Run(ctx):
		}
	}
}

// walkDir starts a new goroutine to walk the specified directory tree
// in recursive manner and sends the path of each script file to a new channel.
// It finishes in case the done channel is getting closed.
func walkDir(
	done <-chan any,
	src string,
	srcExts []string,
) (<-chan string, <-chan error) {
	pathChan := make(chan string)
	errChan := make(chan error, 1)

	go func() {
		// Close the paths channel after Walk returns.
		defer close(pathChan)

		errChan <- filepath.Walk(src, func(path string, f os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !f.Mode().IsRegular() {
				return nil
			}
			if !utils.Contains(srcExts, strings.ToLower(filepath.Ext(f.Name()))) {
				return nil
			}

			select {
			case <-done:
				return errors.New("directory walk cancelled")
			case pathChan <- path:
			}
			return nil
		})
	}()
	return pathChan, errChan
}
