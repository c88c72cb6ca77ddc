package hci

type eventCode uint8

// HCI event codes the classifier knows by value.
const (
	inquiryComplete                      eventCode = 0x01
	readRemoteVersionInformationComplete eventCode = 0x0C
	commandComplete                      eventCode = 0x0E
	commandStatus                        eventCode = 0x0F
	numberOfCompletedPkts                eventCode = 0x13
	extendedInquiryResult                eventCode = 0x2F
	leMeta                               eventCode = 0x3E
)

var eventName = map[eventCode]string{
	inquiryComplete:                      "Inquiry Complete",
	readRemoteVersionInformationComplete: "Read Remote Version Information Complete",
	commandComplete:                      "Command Complete",
	commandStatus:                        "Command Status",
	numberOfCompletedPkts:                "Number Of Completed Packets",
	extendedInquiryResult:                "Extended Inquiry Result",
	leMeta:                               "LE Meta",
}

func (e eventCode) String() string { return eventName[e] }

// ignoredEvents are dropped on sight; none of them tells the analyzer
// anything.
var ignoredEvents = map[eventCode]bool{
	inquiryComplete:                      true,
	readRemoteVersionInformationComplete: true,
	commandComplete:                      true,
	commandStatus:                        true,
	numberOfCompletedPkts:                true,
	extendedInquiryResult:                true,
}

type leEventCode uint8

const (
	leConnectionComplete               leEventCode = 0x01
	leAdvertisingReport                leEventCode = 0x02
	leConnectionUpdateComplete         leEventCode = 0x03
	leReadRemoteUsedFeaturesComplete   leEventCode = 0x04
	leLTKRequest                       leEventCode = 0x05
	leRemoteConnectionParameterRequest leEventCode = 0x06
	leEnhancedConnectionComplete       leEventCode = 0x0A
)

var leEventName = map[leEventCode]string{
	leConnectionComplete:               "LE Connection Complete",
	leAdvertisingReport:                "LE Advertising Report",
	leConnectionUpdateComplete:         "LE Connection Update Complete",
	leReadRemoteUsedFeaturesComplete:   "LE Read Remote Used Features Complete",
	leLTKRequest:                       "LE LTK Request",
	leRemoteConnectionParameterRequest: "LE Remote Connection Parameter Request",
	leEnhancedConnectionComplete:       "LE Enhanced Connection Complete",
}

func (e leEventCode) String() string { return leEventName[e] }

// advClass tells, per advertising event type, whether the report data
// starts with a flags structure and whether the report is decoded at all.
type advClass struct {
	hasFlags  bool
	supported bool
}

var advEventClass = map[uint8]advClass{
	0x00: {hasFlags: true, supported: true}, // ADV_IND
	0x10: {hasFlags: true, supported: true},
	0x20: {hasFlags: true, supported: true},
	0x60: {hasFlags: true, supported: true},

	0x04: {supported: true}, // SCAN_RSP
	0x13: {supported: true},
	0x14: {supported: true},
	0x24: {supported: true},

	0x02: {}, // ADV_SCAN_IND
	0x03: {}, // ADV_NONCONN_IND
	0x12: {},
	0x22: {},
	0x23: {},
}

// advertising data field types
const (
	typeShortName    = 0x08 // Shortened Local Name
	typeCompleteName = 0x09 // Complete Local Name
)

// ACL header flag fields, taken from the MSB of the handle field.
const (
	pbFirstNonFlushable = 0x0 // First Non-automatically Flushable Packet
	pbContinuing        = 0x1 // Continuing Fragment
	pbFirstFlushable    = 0x2 // First Automatically Flushable Packet
	pbComplete          = 0x3 // reserved on LE-U

	handleMask = 0x0FFF
)
