package jobs

import (
	"context"
	"log"

	"invite-tracker/internal/backup"
)

type BackupJob struct {
	uploader *backup.Uploader
}

func NewBackupJob(uploader *backup.Uploader) *BackupJob {
	return &BackupJob{uploader: uploader}
}

func (j *BackupJob) Run(ctx context.Context) {
	if _, err := j.uploader.Run(ctx); err != nil {
		log.Printf("[Backup] Backup finished with errors: %v", err)
	}
}
