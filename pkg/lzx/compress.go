package lzx

import "bytes"

// Compress compresses src in one call and returns the stream together with
// the frame boundaries reported while writing it.
func Compress(src []byte, opts *Options) ([]byte, []Frame, error) {
	var out bytes.Buffer
	var frames []Frame
	marker := FrameMarkerFunc(func(uncompressed, compressed int64) {
		frames = append(frames, Frame{Uncompressed: uncompressed, Compressed: compressed})
	})

	enc, err := NewEncoder(NewSource(bytes.NewReader(src)), &out, marker, opts)
	if err != nil {
		return nil, nil, err
	}
	if err := enc.CompressAll(); err != nil {
		return nil, nil, err
	}
	if _, err := enc.Finish(); err != nil {
		return nil, nil, err
	}
	return out.Bytes(), frames, nil
}
