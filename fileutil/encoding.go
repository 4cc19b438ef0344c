package fileutil

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding/simplifiedchinese"
)

// decodeMemberName 修复压缩包成员名的编码。
// 已是正常 UTF-8 时原样返回，否则依次尝试 GB18030 和 GBK。
func decodeMemberName(name string) string {
	if utf8.ValidString(name) && !containsGarbled(name) {
		return name
	}

	if decoded, err := simplifiedchinese.GB18030.NewDecoder().String(name); err == nil && !containsGarbled(decoded) {
		return decoded
	}
	if decoded, err := simplifiedchinese.GBK.NewDecoder().String(name); err == nil && !containsGarbled(decoded) {
		return decoded
	}
	return name
}

// containsGarbled 检查字符串是否包含明显的乱码。
// 非法字节和替换字符 U+FFFD 都算乱码。
func containsGarbled(s string) bool {
	if strings.ContainsRune(s, utf8.RuneError) {
		return true
	}

	// 较长且几乎全是汉字的名字多半是乱码
	runes := []rune(s)
	han := 0
	for _, r := range runes {
		if unicode.Is(unicode.Han, r) {
			han++
		}
	}
	return len(runes) > 10 && float64(han)/float64(len(runes)) > 0.8
}
