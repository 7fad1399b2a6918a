package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompositeStatus_Priority(t *testing.T) {
	tests := []struct {
		name string
		file StagedFile
		want string
	}{
		{
			name: "overwritten duplicate wins over everything",
			file: StagedFile{IsDuplicate: true, OverwriteCount: 2, ProcessingStatus: ProcessingCompleted, UploadStatus: UploadUploaded},
			want: "OVERWRITE (2x)",
		},
		{
			name: "duplicate beats processed",
			file: StagedFile{IsDuplicate: true, ProcessingStatus: ProcessingCompleted},
			want: "DUPLICATE",
		},
		{
			name: "processed beats uploaded",
			file: StagedFile{UploadStatus: UploadUploaded, ProcessingStatus: ProcessingCompleted},
			want: "PROCESSED",
		},
		{
			name: "processing failure beats uploaded",
			file: StagedFile{UploadStatus: UploadUploaded, ProcessingStatus: ProcessingFailed},
			want: "PROC_FAILED",
		},
		{
			name: "uploaded",
			file: StagedFile{UploadStatus: UploadUploaded, ProcessingStatus: ProcessingNotProcessed},
			want: "UPLOADED",
		},
		{
			name: "upload failed",
			file: StagedFile{UploadStatus: UploadFailed},
			want: "UP_FAILED",
		},
		{
			name: "uploading",
			file: StagedFile{UploadStatus: UploadUploading},
			want: "UPLOADING",
		},
		{
			name: "processing",
			file: StagedFile{UploadStatus: UploadSelected, ProcessingStatus: ProcessingInProgress},
			want: "PROCESSING",
		},
		{
			name: "fresh selection",
			file: StagedFile{UploadStatus: UploadSelected, ProcessingStatus: ProcessingNotProcessed},
			want: "SELECTED",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.file.CompositeStatus())
		})
	}
}

func TestErrorText_PrefersUploadError(t *testing.T) {
	f := StagedFile{UploadError: "up", ProcessingError: "proc"}
	assert.Equal(t, "up", f.ErrorText())

	f = StagedFile{ProcessingError: "proc"}
	assert.Equal(t, "proc", f.ErrorText())

	f = StagedFile{}
	assert.Equal(t, "", f.ErrorText())
}
