package service

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"eduverse_backend/internal/model"
	"eduverse_backend/internal/util"
	"eduverse_backend/internal/validator"
	"eduverse_backend/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// 各类上传资源允许的 MIME，docx 等 Office 文件被识别为 zip
var uploadMimeTypes = map[model.ResourceType][]string{
	model.ResourcePDF:   {util.MimePDF},
	model.ResourceVideo: {util.MimeVideo},
	model.ResourceFile:  {util.MimePDF, util.MimeImage, "text/plain", "application/zip"},
}

// ContentService 处理资源文件上传，写入存储后追加到模块末尾
type ContentService struct {
	Storage        *StorageService
	Sequencer      *ResourceSequencer
	MaxUploadBytes int64
	// VideoProbe 读取视频时长，默认调用 ffprobe
	VideoProbe func(path string) (*util.VideoInfo, error)
}

func NewContentService(storage *StorageService, sequencer *ResourceSequencer, maxUploadMB int64) *ContentService {
	return &ContentService{
		Storage:        storage,
		Sequencer:      sequencer,
		MaxUploadBytes: maxUploadMB << 20,
		VideoProbe:     util.GetVideoInfo,
	}
}

func uploadFilename(moduleID, original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	return fmt.Sprintf("resources/%s/%s-%s%s", moduleID, time.Now().Format("20060102150405"), uuid.NewString()[:8], ext)
}

// UploadResource 只接受 file、pdf、video 三种类型
func (s *ContentService) UploadResource(ctx context.Context, moduleID string, file *multipart.FileHeader, req *validator.ResourceRequest) (*model.Resource, error) {
	t := model.NormalizeResourceType(req.Type)
	allowed, ok := uploadMimeTypes[t]
	if !ok {
		return nil, util.ValidationErrors{{
			Field:   "type",
			Message: "uploads are only accepted for file, pdf and video resources",
			Rule:    "business_logic",
		}}
	}
	if s.MaxUploadBytes > 0 && file.Size > s.MaxUploadBytes {
		return nil, util.InvalidArgumentf("file exceeds the %d MB upload limit", s.MaxUploadBytes>>20)
	}
	if _, err := s.Sequencer.Store.Modules().FindByID(ctx, moduleID); err != nil {
		return nil, err
	}

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	mimeType, err := util.SniffMimeType(src, allowed)
	if err != nil {
		return nil, util.InvalidArgumentf("file content does not match resource type %s: %v", t, err)
	}

	// ffprobe 需要文件路径，先落到临时文件
	tmp, err := os.CreateTemp("", "eduverse-upload-*"+filepath.Ext(file.Filename))
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		return nil, err
	}
	tmp.Close()

	if t == model.ResourceVideo && s.VideoProbe != nil {
		if info, err := s.VideoProbe(tmp.Name()); err != nil {
			logger.Log.Warn("Failed to read video duration", zap.String("file", file.Filename), zap.Error(err))
		} else {
			req.Duration = info.Duration
		}
	}

	filename := uploadFilename(moduleID, file.Filename)
	url, err := s.Storage.UploadFile(ctx, filename, tmp.Name(), mimeType)
	if err != nil {
		return nil, err
	}

	req.Type = string(t)
	req.URL = url
	req.FilePath = filename
	if strings.TrimSpace(req.Title) == "" {
		req.Title = strings.TrimSuffix(file.Filename, filepath.Ext(file.Filename))
	}

	resource, err := s.Sequencer.Append(ctx, moduleID, req)
	if err != nil {
		if derr := s.Storage.Delete(ctx, filename); derr != nil {
			logger.Log.Warn("Failed to remove orphaned upload", zap.String("file", filename), zap.Error(derr))
		}
		return nil, err
	}
	logger.Log.Info("Resource uploaded",
		zap.String("resource_id", resource.ID),
		zap.String("mime", mimeType),
		zap.Int64("size", file.Size))
	return resource, nil
}
