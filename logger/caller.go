package logger

import (
	"runtime"
	"strings"
)

// resolveCaller 通过调用栈推断调用方，返回 "包名" 或 "包名.类型名"。
// 栈不可读时返回 "unknown"。这是尽力而为的推断，经过包装或委托的调用可能会认错。
func resolveCaller(depth int) string {
	pc, _, _, ok := runtime.Caller(depth)
	if !ok {
		return "unknown"
	}
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return "unknown"
	}
	return callerName(fn.Name())
}

// callerName 把完整函数名转换成调用方名称：
//
//	github.com/x/y/fileutil.(*Kit).Extract -> fileutil.Kit
//	github.com/x/y/fileutil.SplitExt       -> fileutil
//	main.main.func1                        -> main
//	gopkg.in/yaml%2ev3.(*T).M              -> yaml.v3.T
func callerName(full string) string {
	if full == "" {
		return "unknown"
	}
	// 去掉包路径
	if i := strings.LastIndex(full, "/"); i >= 0 {
		full = full[i+1:]
	}
	pkg, rest, found := splitPackage(full)
	if !found || !strings.HasPrefix(rest, "(") {
		return pkg
	}
	// 方法接收者: (*Kit) 或 (Kit)，泛型类型带 [...]
	recv, _, ok := strings.Cut(rest[1:], ")")
	if !ok {
		return pkg
	}
	recv = strings.TrimPrefix(recv, "*")
	if i := strings.Index(recv, "["); i >= 0 {
		recv = recv[:i]
	}
	if recv == "" {
		return pkg
	}
	return pkg + "." + recv
}

// splitPackage 在包名之后切开函数名。
// 链接器把导入路径最后一段里的点写成 %2e（yaml.v3 -> yaml%2ev3）；
// 未转义时把紧跟的 vN 段视为包名的一部分。
func splitPackage(name string) (pkg, rest string, found bool) {
	pkg, rest, found = strings.Cut(name, ".")
	if strings.Contains(pkg, "%2e") {
		return strings.ReplaceAll(pkg, "%2e", "."), rest, found
	}
	for found && isVersion(rest) {
		var seg string
		seg, rest, found = strings.Cut(rest, ".")
		pkg += "." + seg
	}
	return pkg, rest, found
}

// isVersion 判断 s 是否以 "vN." 开头。
func isVersion(s string) bool {
	seg, _, ok := strings.Cut(s, ".")
	if !ok || len(seg) < 2 || seg[0] != 'v' {
		return false
	}
	for _, r := range seg[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
