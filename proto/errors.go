package proto

import (
	"errors"

	"github.com/fenwick-systems/pcmcore/config"
)

var errNoActiveUpload = errors.New("proto: no active upload session")

var errUploadOutOfSequence = errors.New("proto: upload chunk out of sequence")

// EncodeNack builds a generic NACK frame: the original command id followed
// by an error reason string (§4.7).
func EncodeNack(originalCmd uint8, reason string) ([]byte, error) {
	payload := append([]byte{originalCmd}, []byte(reason)...)
	return BuildFrame(CmdNack, payload)
}

// EncodeAck builds a generic ACK frame echoing the command id (§4.7).
func EncodeAck(originalCmd uint8) ([]byte, error) {
	return BuildFrame(CmdAck, []byte{originalCmd})
}

// EncodeErrorFrame builds a closed-set error frame: error code followed by
// the original command id (§4.7, §7).
func EncodeErrorFrame(code config.CoreErrorCode, originalCmd uint8) ([]byte, error) {
	return BuildFrame(CmdErrorFrame, []byte{uint8(code), originalCmd})
}
