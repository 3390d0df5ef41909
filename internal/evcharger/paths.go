package evcharger

import (
	"fmt"
)

// Object paths published on the bus.
const (
	PathMgmtProcessName    = "/Mgmt/ProcessName"
	PathMgmtProcessVersion = "/Mgmt/ProcessVersion"
	PathMgmtConnection     = "/Mgmt/Connection"

	PathDeviceInstance  = "/DeviceInstance"
	PathProductID       = "/ProductId"
	PathProductName     = "/ProductName"
	PathCustomName      = "/CustomName"
	PathHardwareVersion = "/HardwareVersion"
	PathFirmwareVersion = "/FirmwareVersion"
	PathSerial          = "/Serial"
	PathConnected       = "/Connected"
	PathUpdateIndex     = "/UpdateIndex"
	PathPosition        = "/Position"
	PathStatus          = "/Status"
	PathMode            = "/Mode"

	PathPower         = "/Ac/Power"
	PathL1Power       = "/Ac/L1/Power"
	PathL2Power       = "/Ac/L2/Power"
	PathL3Power       = "/Ac/L3/Power"
	PathEnergyForward = "/Ac/Energy/Forward"
	PathChargingTime  = "/ChargingTime"
	PathVoltage       = "/Ac/Voltage"
	PathCurrent       = "/Current"
	PathSetCurrent    = "/SetCurrent"
	PathMaxCurrent    = "/MaxCurrent"
	PathStartStop     = "/StartStop"
)

const (
	productID          = 0xFFFF
	hardwareVersion    = 2
	firmwareVersion    = "Unknown"
	serial             = 1
	serviceNamePattern = "com.victronenergy.evcharger.http_%02d"

	// currentParameter is the charger parameter controlling the offered current.
	currentParameter = "current"
	// nominalVoltage is published instead of a measured voltage.
	nominalVoltage = 230
)

// Phases is the number of phases the charger power is split across.
const Phases = 3

// ServiceName returns the bus service name for a device instance.
func ServiceName(deviceInstance int) string {
	return fmt.Sprintf(serviceNamePattern, deviceInstance)
}

// control is the closed set of paths the charger can be controlled through.
type control int

const (
	controlUnmapped control = iota
	controlSetCurrent
	controlStartStop
)

func controlFor(path string) control {
	switch path {
	case PathSetCurrent:
		return controlSetCurrent
	case PathStartStop:
		return controlStartStop
	default:
		return controlUnmapped
	}
}
