package statement

import "log/slog"

// GenericParser is the lenient fallback for bank exports that have a date
// column and some debit/credit column but match neither named format
// closely. It tries the SBI-style column rules first, then the HDFC-style
// ones, and fails only when both do.
type GenericParser struct {
	name string
	sbi  *SBIParser
	hdfc *HDFCParser
	log  *slog.Logger
}

// NewGenericParser returns the fallback parser. log may be nil.
func NewGenericParser(log *slog.Logger) *GenericParser {
	return &GenericParser{
		name: "Generic",
		sbi:  NewSBIParser(log),
		hdfc: NewHDFCParser(log),
		log:  log,
	}
}

func (p *GenericParser) Name() string { return p.name }

func (p *GenericParser) Parse(lines []string) (*ParseResult, error) {
	res, sbiErr := p.sbi.Parse(lines)
	if sbiErr == nil {
		return res, nil
	}
	if p.log != nil {
		p.log.Debug("generic fallback: SBI-style parse failed", "err", sbiErr)
	}

	res, hdfcErr := p.hdfc.Parse(lines)
	if hdfcErr == nil {
		return res, nil
	}

	return nil, &ParseError{Msg: "generic parser could not extract a table", Err: hdfcErr}
}
