package errors

// Common error codes
const (
	// System errors
	ErrInternal        ErrorCode = "internal_error"
	ErrInvalidArgument ErrorCode = "invalid_argument"
	ErrUnavailable     ErrorCode = "service_unavailable"

	// Configuration errors
	ErrInvalidConfig ErrorCode = "invalid_configuration"
	ErrReadConfig    ErrorCode = "read_config_failed"
	ErrBindFlags     ErrorCode = "bind_flags_failed"

	// Logging errors
	ErrInvalidLogLevel ErrorCode = "invalid_log_level"

	// Initialization errors
	ErrInitFailed     ErrorCode = "initialization_failed"
	ErrShutdownFailed ErrorCode = "shutdown_failed"

	// Transport errors
	ErrSerialOpen  ErrorCode = "serial_open_failed"
	ErrSerialRead  ErrorCode = "serial_read_failed"
	ErrSerialWrite ErrorCode = "serial_write_failed"
	ErrBusOpen     ErrorCode = "can_open_failed"
	ErrBusReceive  ErrorCode = "can_receive_failed"
	ErrBusSend     ErrorCode = "can_send_failed"

	// Peripheral errors
	ErrControlWrite ErrorCode = "control_output_write_failed"
	ErrSensorRead   ErrorCode = "sensor_read_failed"

	// Operation errors
	ErrOperationFailed ErrorCode = "operation_failed"
	ErrTimeout         ErrorCode = "operation_timeout"
	ErrQueueFull       ErrorCode = "queue_full"
)

// Common error messages
var errorMessages = map[ErrorCode]string{
	ErrInternal:        "Internal error occurred",
	ErrInvalidArgument: "Invalid argument provided",
	ErrUnavailable:     "Service unavailable",
	ErrInvalidConfig:   "Invalid configuration",
	ErrReadConfig:      "Failed to read configuration",
	ErrBindFlags:       "Failed to bind flags",
	ErrInvalidLogLevel: "Invalid log level",
	ErrInitFailed:      "Initialization failed",
	ErrShutdownFailed:  "Shutdown failed",
	ErrSerialOpen:      "Failed to open serial port",
	ErrSerialRead:      "Failed to read from serial port",
	ErrSerialWrite:     "Failed to write to serial port",
	ErrBusOpen:         "Failed to open CAN interface",
	ErrBusReceive:      "Failed to receive CAN frame",
	ErrBusSend:         "Failed to send CAN frame",
	ErrControlWrite:    "Failed to write control output",
	ErrSensorRead:      "Failed to read sensor",
	ErrOperationFailed: "Operation failed",
	ErrTimeout:         "Operation timed out",
	ErrQueueFull:       "Queue is full",
}

// GetErrorMessage returns the message for a given error code
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}

	return string(code)
}
