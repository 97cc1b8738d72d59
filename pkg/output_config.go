package jungfrau

import (
	"encoding/json"
	"fmt"
)

type EncodingCode int

const (
	EncodeCounts EncodingCode = iota
	EncodeFloat
)

var outputEncodingStrings = []string{
	"counts",
	"float",
}

// OutputEncoding selects how a corrected value is stored in its 32 bit word:
// as an unsigned count or as the bits of a float32.
type OutputEncoding struct {
	Name string
	Code EncodingCode
}

func (o OutputEncoding) String() string {
	if o.Code < EncodeCounts || o.Code > EncodeFloat {
		return "UNKNOWN"
	}
	return outputEncodingStrings[o.Code]
}

func (o OutputEncoding) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.String())
}

func (o *OutputEncoding) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for i, v := range outputEncodingStrings {
		if v == s {
			*o = OutputEncoding{Name: s, Code: EncodingCode(i)}
			return nil
		}
	}
	return fmt.Errorf("invalid OutputEncoding: %s", s)
}

type FormatCode int

const (
	FormatRaw FormatCode = iota
	FormatHDF5
)

var outputFormatStrings = []string{
	"raw",
	"hdf5",
}

// OutputFormat selects the frame sink: one raw file per frame or a single HDF5 file.
type OutputFormat struct {
	Name string
	Code FormatCode
}

func (o OutputFormat) String() string {
	if o.Code < FormatRaw || o.Code > FormatHDF5 {
		return "UNKNOWN"
	}
	return outputFormatStrings[o.Code]
}

func (o OutputFormat) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.String())
}

func (o *OutputFormat) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for i, v := range outputFormatStrings {
		if v == s {
			*o = OutputFormat{Name: s, Code: FormatCode(i)}
			return nil
		}
	}
	return fmt.Errorf("invalid OutputFormat: %s", s)
}
