package fileutil

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
)

// hashChunkSize 是计算摘要时每次读取的字节数。
const hashChunkSize = 256

// SHA256 计算文件的 SHA-256，返回小写十六进制串。
func (k *Kit) SHA256(path string) (string, error) {
	sum, err := k.hashFile(path)
	if err != nil {
		return "", k.fail(ErrHash, err, "无法计算文件的 SHA256: %s", path)
	}
	return sum, nil
}

func (k *Kit) hashFile(path string) (string, error) {
	info, err := k.fs.Stat(path)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", ErrExpectedFile
	}
	f, err := k.fs.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	buf := make([]byte, hashChunkSize)
	for {
		n, err := f.Read(buf)
		h.Write(buf[:n])
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
