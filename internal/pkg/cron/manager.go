package cron

import (
	"Affinity/internal/job"
	log "log/slog"

	"github.com/robfig/cron/v3"
)

const defaultRecomputeSpec = "*/10 * * * * *"

type Manager struct {
	engine        *cron.Cron
	recomputeJob  *job.InterestRecomputeJob
	recomputeSpec string
}

func NewCronManager(recomputeJob *job.InterestRecomputeJob, recomputeSpec string) *Manager {
	if recomputeSpec == "" {
		recomputeSpec = defaultRecomputeSpec
	}
	return &Manager{
		engine: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.Recover(slogLogger{}), cron.SkipIfStillRunning(slogLogger{})),
		),
		recomputeJob:  recomputeJob,
		recomputeSpec: recomputeSpec,
	}
}

// RegisterJobs 注册定时任务
// inline 模式下同步重算失败的用户也会入队，所以两种模式都注册
func (s *Manager) RegisterJobs() error {
	if _, err := s.engine.AddJob(s.recomputeSpec, s.recomputeJob); err != nil {
		return err
	}
	return nil
}

func (s *Manager) Start() {
	log.Info("Cron 定时任务引擎启动")
	s.engine.Start()
}

// Stop 等待正在执行的任务结束
func (s *Manager) Stop() {
	log.Info("Cron 定时任务引擎停止")
	<-s.engine.Stop().Done()
}

// slogLogger 让 cron 的 Recover/Skip 日志走 slog
type slogLogger struct{}

func (slogLogger) Info(msg string, keysAndValues ...any) {
	log.Debug("cron: "+msg, keysAndValues...)
}

func (slogLogger) Error(err error, msg string, keysAndValues ...any) {
	log.Error("cron: "+msg, append(keysAndValues, "err", err)...)
}
