package household

import "github.com/sirupsen/logrus"

// log 家庭模块的日志记录器
var log = logrus.WithField("module", "household")
