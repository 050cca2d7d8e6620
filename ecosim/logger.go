package ecosim

import "github.com/sirupsen/logrus"

// log 宏观环境模块的日志记录器
var log = logrus.WithField("module", "ecosim")
