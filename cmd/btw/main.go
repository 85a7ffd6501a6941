// Command btw encodes raw interleaved PCM files into btw streams and back.
//
// Usage:
//
//	btw encode -format s16 -channels 2 -rate 44100 -in audio.raw -out audio.btw
//	btw decode -in audio.btw -out audio.raw
//	btw info -in audio.btw -blocks
//
// "-" reads from stdin or writes to stdout. The log level is taken from LOG_LEVEL
// (debug, info, warn, error, disabled).
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/arloliu/btw"
	"github.com/arloliu/btw/compress"
	"github.com/arloliu/btw/endian"
	"github.com/arloliu/btw/errs"
	"github.com/arloliu/btw/format"
	"github.com/arloliu/btw/internal/pool"
	"github.com/arloliu/btw/section"
	"github.com/arloliu/btw/stream"
)

const usage = `usage: btw <command> [flags]

commands:
  encode   encode raw PCM into a btw stream
  decode   decode a btw stream into raw PCM
  info     print stream parameters and block layout
`

var errUsage = errors.New("invalid usage")

func main() {
	initLogger(os.Stderr)

	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
		}
		log.Error().Err(err).Msg("btw failed")
		os.Exit(1)
	}
}

// run executes one command; stdin and stdout back the "-" file names.
func run(args []string, stdin io.Reader, stdout io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	switch args[0] {
	case "encode":
		return runEncode(args[1:], stdin, stdout)
	case "decode":
		return runDecode(args[1:], stdin, stdout)
	case "info":
		return runInfo(args[1:], stdin, stdout)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}
}

type encodeFlags struct {
	in, out     string
	sampleFmt   string
	byteOrder   string
	compression string
	channels    uint
	rate        uint
	bits        uint
	workers     int
	checksum    bool
}

func runEncode(args []string, stdin io.Reader, stdout io.Writer) error {
	var f encodeFlags
	fs := flag.NewFlagSet("encode", flag.ContinueOnError)
	fs.StringVar(&f.in, "in", "-", "input raw PCM file")
	fs.StringVar(&f.out, "out", "-", "output stream file")
	fs.StringVar(&f.sampleFmt, "format", "s16", "input sample format: u8, s16, s32")
	fs.StringVar(&f.byteOrder, "endian", "little", "input byte order: little, big, native")
	fs.StringVar(&f.compression, "compress", "", "envelope compression: none, zstd, s2, lz4")
	fs.UintVar(&f.channels, "channels", 2, "channel count")
	fs.UintVar(&f.rate, "rate", 44100, "sample rate in Hz")
	fs.UintVar(&f.bits, "bits", 0, "bits per sample (default: full sample width)")
	fs.IntVar(&f.workers, "workers", 1, "encoding goroutines, 0 for GOMAXPROCS")
	fs.BoolVar(&f.checksum, "checksum", false, "add an xxHash64 checksum envelope")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}

	sf, err := format.ParseSampleFormat(f.sampleFmt)
	if err != nil {
		return err
	}
	engine, err := endian.ParseEngine(f.byteOrder)
	if err != nil {
		return err
	}

	opts := []stream.EncoderOption{stream.WithConcurrency(f.workers), stream.WithChecksum(f.checksum)}
	comp := format.CompressionNone
	if f.compression != "" {
		if comp, err = format.ParseCompressionType(f.compression); err != nil {
			return err
		}
		opts = append(opts, stream.WithCompression(comp))
	}

	bits := f.bits
	if bits == 0 {
		bits = uint(sf.Width() * 8) //nolint:gosec // G115: width is 1, 2 or 4
	}
	if f.channels > 0xFFFFFFFF || f.rate > 0xFFFFFFFF || bits > 0xFFFFFFFF {
		return fmt.Errorf("%w: flag value out of range", errUsage)
	}
	params := btw.StreamParams{
		Channels:      uint32(f.channels), //nolint:gosec // G115: checked above
		BitsPerSample: uint32(bits),       //nolint:gosec // G115: checked above
		SampleRate:    uint32(f.rate),     //nolint:gosec // G115: checked above
	}

	pcm, err := readInput(f.in, stdin)
	if err != nil {
		return err
	}

	start := time.Now()
	var data []byte
	switch sf {
	case format.SampleU8:
		data, err = encodeAs[uint8](pcm, engine, params, opts)
	case format.SampleS16:
		data, err = encodeAs[int16](pcm, engine, params, opts)
	default:
		data, err = encodeAs[int32](pcm, engine, params, opts)
	}
	if err != nil {
		return err
	}

	stats := compress.CompressionStats{
		Algorithm:         comp,
		OriginalSize:      int64(len(pcm)),
		CompressedSize:    int64(len(data)),
		CompressionTimeNs: time.Since(start).Nanoseconds(),
	}
	log.Info().
		Str("in", f.in).
		Str("format", sf.String()).
		Str("compression", stats.Algorithm.String()).
		Int64("pcm_bytes", stats.OriginalSize).
		Int64("stream_bytes", stats.CompressedSize).
		Float64("ratio", stats.CompressionRatio()).
		Float64("savings_pct", stats.SpaceSavings()).
		Dur("elapsed", time.Duration(stats.CompressionTimeNs)).
		Msg("encoded")

	return writeOutput(f.out, stdout, data)
}

func encodeAs[T format.Sample](pcm []byte, engine endian.EndianEngine, params btw.StreamParams, opts []stream.EncoderOption) ([]byte, error) {
	samples, err := readPCM[T](pcm, engine)
	if err != nil {
		return nil, err
	}
	if params.Channels == 0 || len(samples)%int(params.Channels) != 0 {
		return nil, fmt.Errorf("%d samples do not split into %d channels", len(samples), params.Channels)
	}
	params.SampleCount = uint64(len(samples) / int(params.Channels))

	encoder, err := btw.NewEncoder[T](opts...)
	if err != nil {
		return nil, err
	}

	return encoder.Encode(samples, params)
}

func runDecode(args []string, stdin io.Reader, stdout io.Writer) error {
	var in, out, sampleFmt, byteOrder string
	var maxSamples, maxBytes uint64
	fs := flag.NewFlagSet("decode", flag.ContinueOnError)
	fs.StringVar(&in, "in", "-", "input stream file")
	fs.StringVar(&out, "out", "-", "output raw PCM file")
	fs.StringVar(&sampleFmt, "format", "auto", "output sample format: auto, u8, s16, s32")
	fs.StringVar(&byteOrder, "endian", "little", "output byte order: little, big, native")
	fs.Uint64Var(&maxSamples, "max-samples", 0, "reject streams with more samples, 0 for no limit")
	fs.Uint64Var(&maxBytes, "max-stream-bytes", stream.DefaultMaxStreamBytes,
		"reject envelopes declaring a longer raw stream, 0 for no limit")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}

	engine, err := endian.ParseEngine(byteOrder)
	if err != nil {
		return err
	}

	data, err := readInput(in, stdin)
	if err != nil {
		return err
	}

	start := time.Now()
	opts := []stream.DecoderOption{stream.WithMaxSamples(maxSamples), stream.WithMaxStreamBytes(maxBytes)}
	raw, err := stream.Unwrap(data, opts...)
	if err != nil {
		return err
	}
	if section.IsEnvelope(data) {
		logUnwrap(in, data, raw, time.Since(start))
	}

	params, err := btw.ReadHeader(raw)
	if err != nil {
		return err
	}

	sf, err := decodeFormat(sampleFmt, params.BitsPerSample)
	if err != nil {
		return err
	}

	var pcm []byte
	switch sf {
	case format.SampleU8:
		pcm, err = decodeAs[uint8](raw, engine, opts)
	case format.SampleS16:
		pcm, err = decodeAs[int16](raw, engine, opts)
	default:
		pcm, err = decodeAs[int32](raw, engine, opts)
	}
	if err != nil {
		return err
	}

	log.Info().
		Str("in", in).
		Stringer("params", params).
		Str("format", sf.String()).
		Int("stream_bytes", len(data)).
		Int("pcm_bytes", len(pcm)).
		Dur("elapsed", time.Since(start)).
		Msg("decoded")

	return writeOutput(out, stdout, pcm)
}

// logUnwrap reports the envelope decompression of an input that Unwrap already accepted.
func logUnwrap(in string, data, raw []byte, elapsed time.Duration) {
	var header section.EnvelopeHeader
	if err := header.Parse(data); err != nil {
		return
	}

	stats := compress.CompressionStats{
		Algorithm:           header.Compression,
		OriginalSize:        int64(len(raw)),
		CompressedSize:      int64(len(data)),
		DecompressionTimeNs: elapsed.Nanoseconds(),
	}
	log.Debug().
		Str("in", in).
		Str("compression", stats.Algorithm.String()).
		Bool("checksum", header.HasChecksum()).
		Int64("stream_bytes", stats.OriginalSize).
		Int64("envelope_bytes", stats.CompressedSize).
		Float64("ratio", stats.CompressionRatio()).
		Dur("elapsed", time.Duration(stats.DecompressionTimeNs)).
		Msg("unwrapped envelope")
}

// decodeFormat picks the output sample format, rejecting formats narrower than the stream.
func decodeFormat(name string, bitsPerSample uint32) (format.SampleFormat, error) {
	narrowest, ok := format.SampleFormatForBits(bitsPerSample)
	if !ok {
		return 0, fmt.Errorf("%w: %d bits per sample", errs.ErrInvalidParams, bitsPerSample)
	}
	if name == "auto" {
		return narrowest, nil
	}

	sf, err := format.ParseSampleFormat(name)
	if err != nil {
		return 0, err
	}
	if sf.Width() < narrowest.Width() {
		return 0, fmt.Errorf("sample format %s cannot hold %d-bit samples", sf, bitsPerSample)
	}

	return sf, nil
}

func decodeAs[T format.Sample](data []byte, engine endian.EndianEngine, opts []stream.DecoderOption) ([]byte, error) {
	decoder, err := btw.NewDecoder[T](opts...)
	if err != nil {
		return nil, err
	}

	samples, _, err := decoder.Decode(data)
	if err != nil {
		return nil, err
	}

	return appendPCM(nil, samples, engine), nil
}

func runInfo(args []string, stdin io.Reader, stdout io.Writer) error {
	var in string
	var blocks bool
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	fs.StringVar(&in, "in", "-", "input stream file")
	fs.BoolVar(&blocks, "blocks", false, "list every block")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}

	data, err := readInput(in, stdin)
	if err != nil {
		return err
	}

	params, infos, err := stream.Layout(data)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "channels:        %d\n", params.Channels)
	fmt.Fprintf(stdout, "bits per sample: %d\n", params.BitsPerSample)
	fmt.Fprintf(stdout, "sample rate:     %d\n", params.SampleRate)
	fmt.Fprintf(stdout, "frames:          %d\n", params.SampleCount)
	fmt.Fprintf(stdout, "blocks:          %d\n", len(infos))
	fmt.Fprintf(stdout, "stream bytes:    %d\n", len(data))
	if !blocks {
		return nil
	}

	for _, b := range infos {
		fmt.Fprintf(stdout, "block %d: offset=%d size=%d frames=%d rice=%v\n",
			b.Index, b.Offset, b.Size, b.Frames, b.RiceLens)
	}

	return nil
}

func readInput(name string, stdin io.Reader) ([]byte, error) {
	if name != "-" {
		data, err := os.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read input: %w", err)
		}

		return data, nil
	}

	buf := pool.GetStreamBuffer()
	defer pool.PutStreamBuffer(buf)

	if _, err := buf.ReadFrom(stdin); err != nil {
		return nil, fmt.Errorf("failed to read stdin: %w", err)
	}

	return buf.Clone(), nil
}

func writeOutput(name string, stdout io.Writer, data []byte) error {
	if name != "-" {
		if err := os.WriteFile(name, data, 0o644); err != nil { //nolint:gosec // G306: output file
			return fmt.Errorf("failed to write output: %w", err)
		}

		return nil
	}

	if _, err := stdout.Write(data); err != nil {
		return fmt.Errorf("failed to write stdout: %w", err)
	}

	return nil
}
