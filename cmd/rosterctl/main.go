// rosterctl 排班核心的命令行入口：不依赖 HTTP 服务，直接读写文件
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
