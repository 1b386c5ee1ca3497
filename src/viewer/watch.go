package viewer

import (
	"os"
	"time"

	"git.handmade.network/hmn/pngview/src/config"
	"git.handmade.network/hmn/pngview/src/jobs"
	"git.handmade.network/hmn/pngview/src/utils"
	"github.com/jpillora/backoff"
)

// WatchFile polls the viewed file and triggers a reload whenever its
// mtime or size changes. Stat failures (editors replace files
// non-atomically, network mounts hiccup) back off and retry rather than
// killing the watcher.
func (v *Viewer) WatchFile() *jobs.Job {
	job := jobs.New("file watcher")
	interval := time.Duration(config.Config.Viewer.WatchIntervalMs) * time.Millisecond

	go func() {
		defer job.Finish()

		b := &backoff.Backoff{
			Min:    interval,
			Max:    30 * time.Second,
			Factor: 2,
			Jitter: true,
		}

		var lastModTime time.Time
		var lastSize int64
		if info, err := os.Stat(v.Path); err == nil {
			lastModTime = info.ModTime()
			lastSize = info.Size()
		}

		for {
			info, err := os.Stat(v.Path)
			if err != nil {
				wait := b.Duration()
				job.Logger.Warn().Err(err).Dur("retry_in", wait).Msg("Failed to stat watched file")
				if utils.SleepContext(job.Ctx, wait) != nil {
					return
				}
				continue
			}
			b.Reset()

			if info.ModTime() != lastModTime || info.Size() != lastSize {
				lastModTime = info.ModTime()
				lastSize = info.Size()
				job.Logger.Info().Msg("File changed on disk, reloading")
				v.Reload()
			}

			if utils.SleepContext(job.Ctx, interval) != nil {
				return
			}
		}
	}()

	return job
}
