package util

import (
	"fmt"
	"io"
	"net/http"
	"strings"
)

// sniffLen http.DetectContentType 最多读取的字节数
const sniffLen = 512

// SniffMimeType 按文件头识别 MIME 并与允许列表比对，读取后回到文件开头
// allowed 可以是前缀（"video/"）或完整类型（"application/pdf"）
func SniffMimeType(rs io.ReadSeeker, allowed []string) (string, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(rs, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", err
	}
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	mimeType := http.DetectContentType(head[:n])
	// DetectContentType 可能带 charset 参数
	base := strings.TrimSpace(strings.SplitN(mimeType, ";", 2)[0])
	for _, a := range allowed {
		if base == a || (strings.HasSuffix(a, "/") && strings.HasPrefix(base, a)) {
			return base, nil
		}
	}
	return base, fmt.Errorf("unexpected content type %s", base)
}
