package config

import "github.com/fenwick-systems/pcmcore/channel"

// ApplyBlob decodes blob and applies its channels to reg. A full blob
// (HeaderFlagPartial unset) registers every decoded channel, replacing any
// existing entry with the same id. A partial blob only touches the
// channels it carries, leaving the rest of reg untouched (§4.3).
func ApplyBlob(reg *channel.Registry, blob []byte, lim Limits) (FileHeader, error) {
	h, channels, err := DecodeBlob(blob)
	if err != nil {
		return h, err
	}

	for _, ch := range channels {
		if err := ValidateChannel(ch, lim); err != nil {
			return h, err
		}
	}

	for _, ch := range channels {
		reg.Unregister(ch.ID)
		if err := reg.Register(ch); err != nil {
			return h, err
		}
	}

	return h, nil
}
