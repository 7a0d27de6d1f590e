package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/e7canasta/orion-mediakit/modules/attributes"
	"github.com/e7canasta/orion-mediakit/modules/transform"
	"github.com/e7canasta/orion-mediakit/modules/transform/gstprobe"
)

type probeOptions struct {
	root    *rootOptions
	encoder string
}

func newProbeCommand(root *rootOptions) *cobra.Command {
	opts := &probeOptions{root: root}

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Check that an encoder transform can be created on this host",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&opts.encoder, "encoder", "h264", "encoder to probe (h264)")
	return cmd
}

func (o *probeOptions) run(out io.Writer) error {
	logger, err := o.root.logger("")
	if err != nil {
		return err
	}

	if strings.ToLower(o.encoder) != "h264" {
		return fmt.Errorf("unknown encoder %q: %w", o.encoder, transform.ErrUnsupportedFormat)
	}

	enc, err := transform.NewH264Encoder(gstprobe.New(logger), transform.WithLogger(logger))
	if err != nil {
		return err
	}
	defer enc.Release()

	return describeTransform(out, enc)
}

func describeTransform(out io.Writer, t *transform.Transform) error {
	limits := t.StreamLimits()
	inputs, outputs := t.StreamCount()
	fmt.Fprintf(out, "class:   %s\n", t.Class())
	fmt.Fprintf(out, "state:   %s\n", t.State())
	fmt.Fprintf(out, "streams: %d in [%d,%d], %d out [%d,%d]\n",
		inputs, limits.InputMin, limits.InputMax, outputs, limits.OutputMin, limits.OutputMax)

	for i := 0; ; i++ {
		mt, err := t.InputAvailableType(0, i)
		if err != nil {
			break
		}
		fmt.Fprintf(out, "input type %d: %s\n", i, mt.Subtype)
	}

	attrs := t.Attributes()
	defer attrs.Release()
	for i := 0; i < attrs.Count(); i++ {
		key, v, err := attrs.ItemByIndex(i)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "attribute %s (%s) = %s\n", key, v.Type(), formatValue(v))
	}
	return nil
}

func formatValue(v attributes.Value) string {
	switch v.Type() {
	case attributes.TypeUint32:
		n, _ := v.Uint32()
		return fmt.Sprint(n)
	case attributes.TypeUint64:
		n, _ := v.Uint64()
		return fmt.Sprint(n)
	case attributes.TypeDouble:
		d, _ := v.Double()
		return fmt.Sprint(d)
	case attributes.TypeGUID:
		g, _ := v.GUID()
		return g.String()
	case attributes.TypeString:
		s, _ := v.Str()
		return s
	case attributes.TypeBlob:
		b, _ := v.Blob()
		return fmt.Sprintf("%d bytes", len(b))
	}
	return v.Type().String()
}
