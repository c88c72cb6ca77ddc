package att

// Name returns the assigned name of a well-known service, characteristic or
// descriptor, keyed by its canonical text form. It returns "" for anything
// it does not know.
func Name(uuid string) string {
	return knownUUID[uuid]
}

// Bluetooth SIG assigned numbers.
var knownUUID = map[string]string{
	"1800": "Generic Access",
	"1801": "Generic Attribute",
	"1802": "Immediate Alert",
	"1803": "Link Loss",
	"1804": "Tx Power",
	"1805": "Current Time Service",
	"1806": "Reference Time Update Service",
	"1807": "Next DST Change Service",
	"1808": "Glucose",
	"1809": "Health Thermometer",
	"180a": "Device Information",
	"180d": "Heart Rate",
	"180e": "Phone Alert Status Service",
	"180f": "Battery Service",
	"1810": "Blood Pressure",
	"1811": "Alert Notification Service",
	"1812": "Human Interface Device",
	"1813": "Scan Parameters",
	"1814": "Running Speed and Cadence",
	"1816": "Cycling Speed and Cadence",
	"1818": "Cycling Power",
	"1819": "Location and Navigation",

	"2800": "Primary Service",
	"2801": "Secondary Service",
	"2802": "Include",
	"2803": "Characteristic",

	"2900": "Characteristic Extended Properties",
	"2901": "Characteristic User Description",
	"2902": "Client Characteristic Configuration",
	"2903": "Server Characteristic Configuration",
	"2904": "Characteristic Format",
	"2905": "Characteristic Aggregate Format",

	"2a00": "Device Name",
	"2a01": "Appearance",
	"2a02": "Peripheral Privacy Flag",
	"2a03": "Reconnection Address",
	"2a04": "Peripheral Preferred Connection Parameters",
	"2a05": "Service Changed",
	"2a19": "Battery Level",
	"2a23": "System ID",
	"2a24": "Model Number String",
	"2a25": "Serial Number String",
	"2a26": "Firmware Revision String",
	"2a27": "Hardware Revision String",
	"2a28": "Software Revision String",
	"2a29": "Manufacturer Name String",
	"2a37": "Heart Rate Measurement",
	"2a38": "Body Sensor Location",
	"2a50": "PnP ID",
	"2aa6": "Central Address Resolution",
}
