package util

const TimeFormat = "2006-01-02 15:04:05"

// StorageMinio 之外的存储类型均写入本地目录
const StorageMinio = "minio"

// 文件上传相关常量
const (
	MimeVideo = "video/"
	MimeImage = "image/"
	MimePDF   = "application/pdf"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// UserIDHeader 标识当前操作用户（仅用于记录访问，不做鉴权）
const UserIDHeader = "X-User-ID"
