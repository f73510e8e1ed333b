package cron

import log "log/slog"

// InitCron 注册并启动全部定时任务
func InitCron(mgr *Manager) error {
	if err := mgr.RegisterJobs(); err != nil {
		return err
	}
	mgr.Start()
	log.Info("Cron jobs started", "recompute_spec", mgr.recomputeSpec, "entries", len(mgr.engine.Entries()))
	return nil
}
