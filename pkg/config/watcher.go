package config

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/lenscoach/lenscoach/pkg/logger"
)

// Watcher reloads the coach tuning section when the config file changes.
type Watcher struct {
	watcher *fsnotify.Watcher
	file    string
	done    chan struct{}
	log     *logger.Logger
}

// NewWatcher watches the config file in the dir param.
// The onChange callback receives a freshly loaded Coach section.
func NewWatcher(dir string, log *logger.Logger, onChange func(Coach)) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if dir == "" {
		dir = "configs"
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	w := &Watcher{watcher: watcher, file: filepath.Join(dir, configFile), done: make(chan struct{}), log: log}
	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(w.file) {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				var conf Config
				if err := LoadConfig(&conf, dir); err != nil {
					w.log.Error().Err(err).Msg("config reload failed")
					continue
				}
				w.log.Info().Msgf("config reloaded from %v", w.file)
				onChange(conf.Coach)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				w.log.Error().Err(err).Msg("config watcher")
			case <-w.done:
				return
			}
		}
	}()
	return w, nil
}

func (w *Watcher) Stop() error {
	close(w.done)
	return w.watcher.Close()
}
