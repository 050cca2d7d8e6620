package entity

import (
	"github.com/tsinghua-fib-lab/agentsociety-household/clock"
	"github.com/tsinghua-fib-lab/agentsociety-household/utils/config"
	"github.com/tsinghua-fib-lab/agentsociety-household/utils/randengine"
)

type ITaskContext interface {
	Clock() *clock.Clock
	RuntimeConfig() *config.RuntimeConfig
	Rand() *randengine.Engine
	Economy() IEconomy
	Population() IPopulation
	HouseholdManager() IHouseholdManager
}
