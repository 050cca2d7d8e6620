package population

import "github.com/sirupsen/logrus"

// log 人口汇总模块的日志记录器
var log = logrus.WithField("module", "population")
