package config

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"

	"github.com/fenwick-systems/pcmcore/channel"
)

var le = binary.LittleEndian

func writeRational(buf *bytes.Buffer, r Rational) {
	var tmp [4]byte
	le.PutUint16(tmp[0:2], uint16(r.Num))
	le.PutUint16(tmp[2:4], uint16(r.Den))
	buf.Write(tmp[:])
}

func readRational(b []byte) Rational {
	return Rational{
		Num: int16(le.Uint16(b[0:2])),
		Den: int16(le.Uint16(b[2:4])),
	}
}

func putBool(buf *bytes.Buffer, v bool) {
	if v {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}
}

func putI32(buf *bytes.Buffer, v int32) {
	var tmp [4]byte
	le.PutUint32(tmp[:], uint32(v))
	buf.Write(tmp[:])
}

func putU32(buf *bytes.Buffer, v uint32) {
	var tmp [4]byte
	le.PutUint32(tmp[:], v)
	buf.Write(tmp[:])
}

func putU16(buf *bytes.Buffer, v uint16) {
	var tmp [2]byte
	le.PutUint16(tmp[:], v)
	buf.Write(tmp[:])
}

func putI16(buf *bytes.Buffer, v int16) { putU16(buf, uint16(v)) }

// EncodeTypeConfig serializes cfg (the type matching kind) to its fixed-size
// wire representation (§3.2, §8.1).
func EncodeTypeConfig(kind channel.Kind, cfg any) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(WireSize(kind))

	switch kind {
	case channel.KindDigitalInput:
		c, ok := cfg.(DigitalInputConfig)
		if !ok {
			return nil, Error{Code: ErrInvalidConfigKind}
		}
		putBool(&buf, c.ActiveHigh)
		putBool(&buf, c.UsePullup)
		putU16(&buf, c.DebounceMs)

	case channel.KindAnalogInput:
		c, ok := cfg.(AnalogInputConfig)
		if !ok {
			return nil, Error{Code: ErrInvalidConfigKind}
		}
		putI32(&buf, c.RawMin)
		putI32(&buf, c.RawMax)
		putI32(&buf, c.ScaledMin)
		putI32(&buf, c.ScaledMax)
		putU16(&buf, c.FilterMs)
		buf.WriteByte(c.FilterKind)
		buf.WriteByte(c.SampleCount)

	case channel.KindFrequencyInput:
		c, ok := cfg.(FrequencyInputConfig)
		if !ok {
			return nil, Error{Code: ErrInvalidConfigKind}
		}
		putU32(&buf, c.MinHz)
		putU32(&buf, c.MaxHz)
		putU16(&buf, c.TimeoutMs)
		buf.WriteByte(c.EdgeMode)
		putU16(&buf, c.PulsesPerRevFixed)
		writeRational(&buf, c.Scale)
		buf.Write(make([]byte, 3)) // reserved

	case channel.KindCANInput:
		c, ok := cfg.(CANInputConfig)
		if !ok {
			return nil, Error{Code: ErrInvalidConfigKind}
		}
		putU32(&buf, c.CANID)
		var flags byte
		if c.Extended {
			flags |= 1
		}
		if c.Signed {
			flags |= 2
		}
		flags |= c.ByteOrder << 2
		buf.WriteByte(flags)
		buf.WriteByte(c.Bus)
		buf.WriteByte(c.StartBit)
		buf.WriteByte(c.BitLength)
		writeRational(&buf, c.Scale)
		putI32(&buf, c.Offset)
		putU16(&buf, c.TimeoutMs)

	case channel.KindPowerOutput:
		c, ok := cfg.(PowerOutputConfig)
		if !ok {
			return nil, Error{Code: ErrInvalidConfigKind}
		}
		putU16(&buf, c.CurrentLimitMA)
		putU16(&buf, c.InrushLimitMA)
		putU16(&buf, c.InrushWindowMs)
		buf.WriteByte(c.RetryCount)
		buf.WriteByte(c.RetryDelayMs)
		putU16(&buf, c.PWMFreqHz)
		buf.WriteByte(c.SoftStartMs)
		buf.WriteByte(c.Flags)

	case channel.KindPWMOutput:
		c, ok := cfg.(PWMOutputConfig)
		if !ok {
			return nil, Error{Code: ErrInvalidConfigKind}
		}
		putU16(&buf, c.FreqHz)
		putU16(&buf, c.MinDuty)
		putU16(&buf, c.MaxDuty)
		putU16(&buf, c.DefaultDuty)
		putBool(&buf, c.Invert)
		buf.WriteByte(0) // reserved

	case channel.KindHBridge:
		c, ok := cfg.(HBridgeConfig)
		if !ok {
			return nil, Error{Code: ErrInvalidConfigKind}
		}
		putU16(&buf, c.PWMFreqHz)
		putU16(&buf, c.CurrentLimitMA)
		putU16(&buf, c.AccelRate)
		putU16(&buf, c.DecelRate)
		buf.WriteByte(c.DeadbandPct)
		buf.WriteByte(c.BrakeMode)
		buf.Write(make([]byte, 2)) // reserved

	case channel.KindCANOutput:
		c, ok := cfg.(CANOutputConfig)
		if !ok {
			return nil, Error{Code: ErrInvalidConfigKind}
		}
		putU32(&buf, c.CANID)
		var flags byte
		if c.Extended {
			flags |= 1
		}
		flags |= c.Bus << 1
		buf.WriteByte(flags)
		buf.WriteByte(c.DLC)
		buf.WriteByte(c.StartBit)
		buf.WriteByte(c.BitLength)
		putU16(&buf, c.PeriodMs)
		writeRational(&buf, c.Scale)
		putI32(&buf, c.Offset)

	case channel.KindTimer:
		c, ok := cfg.(TimerConfig)
		if !ok {
			return nil, Error{Code: ErrInvalidConfigKind}
		}
		buf.WriteByte(c.Mode)
		buf.WriteByte(c.TriggerMode)
		putU16(&buf, uint16(c.TriggerID))
		putU32(&buf, c.DelayMs)
		putU16(&buf, c.BlinkOnMs)
		putU16(&buf, c.BlinkOffMs)
		putBool(&buf, c.AutoReset)
		buf.Write(make([]byte, 3)) // reserved

	case channel.KindLogic:
		c, ok := cfg.(LogicConfig)
		if !ok {
			return nil, Error{Code: ErrInvalidConfigKind}
		}
		buf.WriteByte(c.Operation)
		buf.WriteByte(c.InputCount)
		for _, id := range c.Inputs {
			putU16(&buf, uint16(id))
		}
		putI32(&buf, c.CompareValue)
		putBool(&buf, c.InvertOutput)
		buf.WriteByte(0) // reserved

	case channel.KindMath:
		c, ok := cfg.(MathConfig)
		if !ok {
			return nil, Error{Code: ErrInvalidConfigKind}
		}
		buf.WriteByte(c.Operation)
		buf.WriteByte(c.InputCount)
		for _, id := range c.Inputs {
			putU16(&buf, uint16(id))
		}
		putI32(&buf, c.Constant)
		putI16(&buf, c.ClampMin)
		putI16(&buf, c.ClampMax)
		writeRational(&buf, c.Scale)
		buf.Write(make([]byte, 2)) // reserved

	case channel.KindTable2D:
		c, ok := cfg.(Table2DConfig)
		if !ok {
			return nil, Error{Code: ErrInvalidConfigKind}
		}
		putU16(&buf, uint16(c.InputID))
		buf.WriteByte(c.PointCount)
		buf.WriteByte(0) // reserved
		for _, x := range c.X {
			putI16(&buf, x)
		}
		for _, y := range c.Y {
			putI16(&buf, y)
		}

	case channel.KindTable3D:
		c, ok := cfg.(Table3DConfig)
		if !ok {
			return nil, Error{Code: ErrInvalidConfigKind}
		}
		putU16(&buf, uint16(c.InputXID))
		putU16(&buf, uint16(c.InputYID))
		buf.WriteByte(c.XSize)
		buf.WriteByte(c.YSize)
		buf.Write(make([]byte, 2)) // reserved
		for _, x := range c.X {
			putI16(&buf, x)
		}
		for _, y := range c.Y {
			putI16(&buf, y)
		}
		for _, row := range c.Z {
			for _, z := range row {
				putI16(&buf, z)
			}
		}

	case channel.KindFilter:
		c, ok := cfg.(FilterConfig)
		if !ok {
			return nil, Error{Code: ErrInvalidConfigKind}
		}
		putU16(&buf, uint16(c.InputID))
		buf.WriteByte(c.FilterKind)
		buf.WriteByte(c.WindowSize)
		putU16(&buf, c.TimeConstant)
		buf.WriteByte(c.Alpha)
		buf.WriteByte(0) // reserved

	case channel.KindPID:
		c, ok := cfg.(PIDConfig)
		if !ok {
			return nil, Error{Code: ErrInvalidConfigKind}
		}
		putU16(&buf, uint16(c.SetpointID))
		putU16(&buf, uint16(c.FeedbackID))
		putI16(&buf, c.Kp)
		putI16(&buf, c.Ki)
		putI16(&buf, c.Kd)
		putI16(&buf, c.OutputMin)
		putI16(&buf, c.OutputMax)
		putI16(&buf, c.IntegralMin)
		putI16(&buf, c.IntegralMax)
		putI16(&buf, c.Deadband)
		putBool(&buf, c.DOnMeasurement)
		buf.WriteByte(0) // reserved

	case channel.KindNumber:
		c, ok := cfg.(NumberConfig)
		if !ok {
			return nil, Error{Code: ErrInvalidConfigKind}
		}
		putI32(&buf, c.Value)
		putI32(&buf, c.Min)
		putI32(&buf, c.Max)
		putI32(&buf, c.Step)
		putBool(&buf, c.ReadOnly)
		putBool(&buf, c.PersistOnChange)
		buf.Write(make([]byte, 2)) // reserved

	case channel.KindSwitch:
		c, ok := cfg.(SwitchConfig)
		if !ok {
			return nil, Error{Code: ErrInvalidConfigKind}
		}
		putU16(&buf, uint16(c.SelectorID))
		buf.WriteByte(c.Mode)
		buf.WriteByte(c.CaseCount)
		for _, sc := range c.Cases {
			putI32(&buf, sc.Match)
			putI32(&buf, sc.Max)
			putI32(&buf, sc.Result)
		}
		putI32(&buf, c.Default)

	case channel.KindCounter:
		c, ok := cfg.(CounterConfig)
		if !ok {
			return nil, Error{Code: ErrInvalidConfigKind}
		}
		putU16(&buf, uint16(c.IncTriggerID))
		putU16(&buf, uint16(c.DecTriggerID))
		putU16(&buf, uint16(c.ResetTriggerID))
		putI16(&buf, c.Initial)
		putI16(&buf, c.Min)
		putI16(&buf, c.Max)
		putI16(&buf, c.Step)
		putBool(&buf, c.Wrap)
		buf.WriteByte(c.Mode)
		buf.Write(make([]byte, 2)) // reserved

	case channel.KindFlipFlop:
		c, ok := cfg.(FlipFlopConfig)
		if !ok {
			return nil, Error{Code: ErrInvalidConfigKind}
		}
		buf.WriteByte(c.Variant)
		putU16(&buf, uint16(c.InputS))
		putU16(&buf, uint16(c.InputR))
		putU16(&buf, uint16(c.Clock))
		putBool(&buf, c.Initial)
		buf.Write(make([]byte, 4)) // reserved

	case channel.KindHysteresis:
		c, ok := cfg.(HysteresisConfig)
		if !ok {
			return nil, Error{Code: ErrInvalidConfigKind}
		}
		putU16(&buf, uint16(c.InputID))
		buf.WriteByte(c.Variant)
		putBool(&buf, c.Invert)
		putI32(&buf, c.ThresholdLow)
		putI32(&buf, c.ThresholdHigh)

	default:
		return nil, Error{Code: ErrInvalidConfigKind, Field: "kind", Actual: int64(kind)}
	}

	return buf.Bytes(), nil
}

// DecodeTypeConfig parses b (exactly WireSize(kind) bytes) back into the
// typed record for kind (§3.2, §8.1: round-trip byte-for-byte).
func DecodeTypeConfig(kind channel.Kind, b []byte) (any, error) {
	if len(b) != WireSize(kind) {
		return nil, Error{Code: ErrConfigSizeMismatch, Field: "size", Actual: int64(len(b)), Min: int64(WireSize(kind)), Max: int64(WireSize(kind))}
	}

	switch kind {
	case channel.KindDigitalInput:
		return DigitalInputConfig{
			ActiveHigh: b[0] != 0,
			UsePullup:  b[1] != 0,
			DebounceMs: le.Uint16(b[2:4]),
		}, nil

	case channel.KindAnalogInput:
		return AnalogInputConfig{
			RawMin:      int32(le.Uint32(b[0:4])),
			RawMax:      int32(le.Uint32(b[4:8])),
			ScaledMin:   int32(le.Uint32(b[8:12])),
			ScaledMax:   int32(le.Uint32(b[12:16])),
			FilterMs:    le.Uint16(b[16:18]),
			FilterKind:  b[18],
			SampleCount: b[19],
		}, nil

	case channel.KindFrequencyInput:
		return FrequencyInputConfig{
			MinHz:             le.Uint32(b[0:4]),
			MaxHz:             le.Uint32(b[4:8]),
			TimeoutMs:         le.Uint16(b[8:10]),
			EdgeMode:          b[10],
			PulsesPerRevFixed: le.Uint16(b[11:13]),
			Scale:             readRational(b[13:17]),
		}, nil

	case channel.KindCANInput:
		flags := b[4]
		return CANInputConfig{
			CANID:     le.Uint32(b[0:4]),
			Extended:  flags&1 != 0,
			Signed:    flags&2 != 0,
			ByteOrder: (flags >> 2) & 0x3,
			Bus:       b[5],
			StartBit:  b[6],
			BitLength: b[7],
			Scale:     readRational(b[8:12]),
			Offset:    int32(le.Uint32(b[12:16])),
			TimeoutMs: le.Uint16(b[16:18]),
		}, nil

	case channel.KindPowerOutput:
		return PowerOutputConfig{
			CurrentLimitMA: le.Uint16(b[0:2]),
			InrushLimitMA:  le.Uint16(b[2:4]),
			InrushWindowMs: le.Uint16(b[4:6]),
			RetryCount:     b[6],
			RetryDelayMs:   b[7],
			PWMFreqHz:      le.Uint16(b[8:10]),
			SoftStartMs:    b[10],
			Flags:          b[11],
		}, nil

	case channel.KindPWMOutput:
		return PWMOutputConfig{
			FreqHz:      le.Uint16(b[0:2]),
			MinDuty:     le.Uint16(b[2:4]),
			MaxDuty:     le.Uint16(b[4:6]),
			DefaultDuty: le.Uint16(b[6:8]),
			Invert:      b[8] != 0,
		}, nil

	case channel.KindHBridge:
		return HBridgeConfig{
			PWMFreqHz:      le.Uint16(b[0:2]),
			CurrentLimitMA: le.Uint16(b[2:4]),
			AccelRate:      le.Uint16(b[4:6]),
			DecelRate:      le.Uint16(b[6:8]),
			DeadbandPct:    b[8],
			BrakeMode:      b[9],
		}, nil

	case channel.KindCANOutput:
		flags := b[4]
		return CANOutputConfig{
			CANID:     le.Uint32(b[0:4]),
			Extended:  flags&1 != 0,
			Bus:       (flags >> 1) & 0x7,
			DLC:       b[5],
			StartBit:  b[6],
			BitLength: b[7],
			PeriodMs:  le.Uint16(b[8:10]),
			Scale:     readRational(b[10:14]),
			Offset:    int32(le.Uint32(b[14:18])),
		}, nil

	case channel.KindTimer:
		return TimerConfig{
			Mode:        b[0],
			TriggerMode: b[1],
			TriggerID:   channel.ID(le.Uint16(b[2:4])),
			DelayMs:     le.Uint32(b[4:8]),
			BlinkOnMs:   le.Uint16(b[8:10]),
			BlinkOffMs:  le.Uint16(b[10:12]),
			AutoReset:   b[12] != 0,
		}, nil

	case channel.KindLogic:
		var c LogicConfig
		c.Operation = b[0]
		c.InputCount = b[1]
		for i := 0; i < LogicMaxInputs; i++ {
			c.Inputs[i] = channel.ID(le.Uint16(b[2+2*i : 4+2*i]))
		}
		c.CompareValue = int32(le.Uint32(b[18:22]))
		c.InvertOutput = b[22] != 0
		return c, nil

	case channel.KindMath:
		var c MathConfig
		c.Operation = b[0]
		c.InputCount = b[1]
		for i := 0; i < MathMaxInputs; i++ {
			c.Inputs[i] = channel.ID(le.Uint16(b[2+2*i : 4+2*i]))
		}
		c.Constant = int32(le.Uint32(b[18:22]))
		c.ClampMin = int16(le.Uint16(b[22:24]))
		c.ClampMax = int16(le.Uint16(b[24:26]))
		c.Scale = readRational(b[26:30])
		return c, nil

	case channel.KindTable2D:
		var c Table2DConfig
		c.InputID = channel.ID(le.Uint16(b[0:2]))
		c.PointCount = b[2]
		off := 4
		for i := 0; i < Table2DMaxPoints; i++ {
			c.X[i] = int16(le.Uint16(b[off : off+2]))
			off += 2
		}
		for i := 0; i < Table2DMaxPoints; i++ {
			c.Y[i] = int16(le.Uint16(b[off : off+2]))
			off += 2
		}
		return c, nil

	case channel.KindTable3D:
		var c Table3DConfig
		c.InputXID = channel.ID(le.Uint16(b[0:2]))
		c.InputYID = channel.ID(le.Uint16(b[2:4]))
		c.XSize = b[4]
		c.YSize = b[5]
		off := 8
		for i := 0; i < Table3DMaxAxis; i++ {
			c.X[i] = int16(le.Uint16(b[off : off+2]))
			off += 2
		}
		for i := 0; i < Table3DMaxAxis; i++ {
			c.Y[i] = int16(le.Uint16(b[off : off+2]))
			off += 2
		}
		for i := 0; i < Table3DMaxAxis; i++ {
			for j := 0; j < Table3DMaxAxis; j++ {
				c.Z[i][j] = int16(le.Uint16(b[off : off+2]))
				off += 2
			}
		}
		return c, nil

	case channel.KindFilter:
		return FilterConfig{
			InputID:      channel.ID(le.Uint16(b[0:2])),
			FilterKind:   b[2],
			WindowSize:   b[3],
			TimeConstant: le.Uint16(b[4:6]),
			Alpha:        b[6],
		}, nil

	case channel.KindPID:
		return PIDConfig{
			SetpointID:     channel.ID(le.Uint16(b[0:2])),
			FeedbackID:     channel.ID(le.Uint16(b[2:4])),
			Kp:             int16(le.Uint16(b[4:6])),
			Ki:             int16(le.Uint16(b[6:8])),
			Kd:             int16(le.Uint16(b[8:10])),
			OutputMin:      int16(le.Uint16(b[10:12])),
			OutputMax:      int16(le.Uint16(b[12:14])),
			IntegralMin:    int16(le.Uint16(b[14:16])),
			IntegralMax:    int16(le.Uint16(b[16:18])),
			Deadband:       int16(le.Uint16(b[18:20])),
			DOnMeasurement: b[20] != 0,
		}, nil

	case channel.KindNumber:
		return NumberConfig{
			Value:           int32(le.Uint32(b[0:4])),
			Min:             int32(le.Uint32(b[4:8])),
			Max:             int32(le.Uint32(b[8:12])),
			Step:            int32(le.Uint32(b[12:16])),
			ReadOnly:        b[16] != 0,
			PersistOnChange: b[17] != 0,
		}, nil

	case channel.KindSwitch:
		var c SwitchConfig
		c.SelectorID = channel.ID(le.Uint16(b[0:2]))
		c.Mode = b[2]
		c.CaseCount = b[3]
		off := 4
		for i := 0; i < SwitchMaxCases; i++ {
			c.Cases[i] = SwitchCase{
				Match:  int32(le.Uint32(b[off : off+4])),
				Max:    int32(le.Uint32(b[off+4 : off+8])),
				Result: int32(le.Uint32(b[off+8 : off+12])),
			}
			off += 12
		}
		c.Default = int32(le.Uint32(b[off : off+4]))
		return c, nil

	case channel.KindCounter:
		return CounterConfig{
			IncTriggerID:   channel.ID(le.Uint16(b[0:2])),
			DecTriggerID:   channel.ID(le.Uint16(b[2:4])),
			ResetTriggerID: channel.ID(le.Uint16(b[4:6])),
			Initial:        int16(le.Uint16(b[6:8])),
			Min:            int16(le.Uint16(b[8:10])),
			Max:            int16(le.Uint16(b[10:12])),
			Step:           int16(le.Uint16(b[12:14])),
			Wrap:           b[14] != 0,
			Mode:           b[15],
		}, nil

	case channel.KindFlipFlop:
		return FlipFlopConfig{
			Variant: b[0],
			InputS:  channel.ID(le.Uint16(b[1:3])),
			InputR:  channel.ID(le.Uint16(b[3:5])),
			Clock:   channel.ID(le.Uint16(b[5:7])),
			Initial: b[7] != 0,
		}, nil

	case channel.KindHysteresis:
		return HysteresisConfig{
			InputID:       channel.ID(le.Uint16(b[0:2])),
			Variant:       b[2],
			Invert:        b[3] != 0,
			ThresholdLow:  int32(le.Uint32(b[4:8])),
			ThresholdHigh: int32(le.Uint32(b[8:12])),
		}, nil

	default:
		return nil, Error{Code: ErrInvalidConfigKind, Field: "kind", Actual: int64(kind)}
	}
}

// EncodeEntry serializes one channel as a channel header, its name, and its
// type-specific config (§4.3).
func EncodeEntry(ch *channel.Channel) ([]byte, error) {
	var typeBytes []byte
	if ch.Kind.IsComputed() || ch.Kind.IsInput() || ch.Kind.IsOutput() {
		var err error
		typeBytes, err = EncodeTypeConfig(ch.Kind, ch.Config)
		if err != nil {
			return nil, err
		}
	}

	name := ch.Name
	if len(name) > MaxNameLength {
		name = name[:MaxNameLength]
	}

	var buf bytes.Buffer
	buf.Grow(ChannelHeaderSize + len(name) + len(typeBytes))

	putU16(&buf, uint16(ch.ID))
	buf.WriteByte(uint8(ch.Kind))
	buf.WriteByte(uint8(ch.Flags))
	buf.WriteByte(ch.HWDevice)
	buf.WriteByte(ch.HWIndex)
	putU16(&buf, 0) // source-id, reserved for future cross-wiring use
	putI32(&buf, ch.Value)
	buf.WriteByte(uint8(len(name)))
	buf.WriteByte(uint8(len(typeBytes)))
	buf.WriteString(name)
	buf.Write(typeBytes)

	return buf.Bytes(), nil
}

// DecodeEntry parses one channel entry starting at b[0], returning the
// channel and the number of bytes consumed.
func DecodeEntry(b []byte) (*channel.Channel, int, error) {
	if len(b) < ChannelHeaderSize {
		return nil, 0, Error{Code: ErrInvalidLength, Field: "entry", Actual: int64(len(b)), Min: ChannelHeaderSize}
	}

	id := channel.ID(le.Uint16(b[0:2]))
	kind := channel.Kind(b[2])
	flags := channel.Flags(b[3])
	hwDevice := b[4]
	hwIndex := b[5]
	// b[6:8] source-id, reserved
	defaultValue := int32(le.Uint32(b[8:12]))
	nameLen := int(b[12])
	cfgLen := int(b[13])

	total := ChannelHeaderSize + nameLen + cfgLen
	if len(b) < total {
		return nil, 0, Error{Code: ErrInvalidLength, Field: "entry", Actual: int64(len(b)), Min: int64(total)}
	}

	name := string(b[ChannelHeaderSize : ChannelHeaderSize+nameLen])

	var cfg any
	if cfgLen > 0 {
		expected := WireSize(kind)
		if expected != cfgLen {
			return nil, 0, Error{Code: ErrConfigSizeMismatch, Field: "config_size", Actual: int64(cfgLen), Min: int64(expected), Max: int64(expected)}
		}
		var err error
		cfg, err = DecodeTypeConfig(kind, b[ChannelHeaderSize+nameLen:total])
		if err != nil {
			return nil, 0, err
		}
	}

	ch := &channel.Channel{
		ID:       id,
		Name:     name,
		Kind:     kind,
		Flags:    flags,
		HWDevice: hwDevice,
		HWIndex:  hwIndex,
		Value:    defaultValue,
		Config:   cfg,
	}

	return ch, total, nil
}

// EncodeBlob serializes channels into a complete configuration blob: file
// header followed by each channel entry, in order (§4.3). When partial is
// true, HeaderFlagPartial is set and the blob is an overlay (entries not
// present are left untouched on apply — see ApplyBlob).
func EncodeBlob(channels []*channel.Channel, deviceType uint16, unixTime uint32, partial bool) ([]byte, error) {
	var payload bytes.Buffer
	for _, ch := range channels {
		entry, err := EncodeEntry(ch)
		if err != nil {
			return nil, err
		}
		payload.Write(entry)
	}

	var flags uint16
	if partial {
		flags |= HeaderFlagPartial
	}

	total := FileHeaderSize + payload.Len()
	crc := crc32.ChecksumIEEE(payload.Bytes())

	var buf bytes.Buffer
	buf.Grow(total)
	putU32(&buf, BlobMagic)
	putU16(&buf, CurrentVersion)
	putU16(&buf, deviceType)
	putU32(&buf, uint32(total))
	putU32(&buf, crc)
	putU16(&buf, uint16(len(channels)))
	putU16(&buf, flags)
	putU32(&buf, unixTime)
	buf.Write(make([]byte, 8)) // reserved
	buf.Write(payload.Bytes())

	return buf.Bytes(), nil
}

// ParseHeader parses and validates the 32-byte file header: magic, version,
// total_size, and crc32 are checked before any entry is parsed (§4.3).
func ParseHeader(blob []byte) (FileHeader, error) {
	if len(blob) < FileHeaderSize {
		return FileHeader{}, Error{Code: ErrInvalidLength, Field: "header", Actual: int64(len(blob)), Min: FileHeaderSize}
	}

	h := FileHeader{
		Magic:        le.Uint32(blob[0:4]),
		Version:      le.Uint16(blob[4:6]),
		DeviceType:   le.Uint16(blob[6:8]),
		TotalSize:    le.Uint32(blob[8:12]),
		CRC32:        le.Uint32(blob[12:16]),
		ChannelCount: le.Uint16(blob[16:18]),
		Flags:        le.Uint16(blob[18:20]),
		UnixTime:     le.Uint32(blob[20:24]),
	}

	if h.Magic != BlobMagic {
		return h, Error{Code: ErrInvalidLength, Field: "magic", Actual: int64(h.Magic), Min: int64(BlobMagic), Max: int64(BlobMagic)}
	}
	if h.Version != CurrentVersion {
		return h, Error{Code: ErrVersionMismatch, Field: "version", Actual: int64(h.Version), Min: int64(CurrentVersion), Max: int64(CurrentVersion)}
	}
	if int(h.TotalSize) != len(blob) {
		return h, Error{Code: ErrInvalidLength, Field: "total_size", Actual: int64(h.TotalSize), Min: int64(len(blob)), Max: int64(len(blob))}
	}

	payload := blob[FileHeaderSize:]
	if crc32.ChecksumIEEE(payload) != h.CRC32 {
		return h, Error{Code: ErrCrcMismatch, Field: "crc32", Actual: int64(crc32.ChecksumIEEE(payload)), Min: int64(h.CRC32), Max: int64(h.CRC32)}
	}

	return h, nil
}

// DecodeBlob validates the header (magic, version, total_size, crc32) and
// parses every channel entry. A blob whose declared entries do not exactly
// fill total_size is rejected (§4.3).
func DecodeBlob(blob []byte) (FileHeader, []*channel.Channel, error) {
	h, err := ParseHeader(blob)
	if err != nil {
		return h, nil, err
	}

	channels := make([]*channel.Channel, 0, h.ChannelCount)
	off := FileHeaderSize
	for i := 0; i < int(h.ChannelCount); i++ {
		ch, n, err := DecodeEntry(blob[off:])
		if err != nil {
			return h, nil, err
		}
		channels = append(channels, ch)
		off += n
	}

	if off != len(blob) {
		return h, nil, Error{Code: ErrInvalidLength, Field: "entries", Actual: int64(off), Min: int64(len(blob)), Max: int64(len(blob))}
	}

	return h, channels, nil
}
