package extrinsic

import (
	"fmt"

	"go.uber.org/zap"

	"extrinsicScope/internal/assets"
	"extrinsicScope/internal/codec"
	"extrinsicScope/internal/model"
)

// Observer receives classification outcomes.
type Observer interface {
	ObserveMatch(chainID, matcher string)
	ObserveSkip(chainID, reason string)
}

type nopObserver struct{}

func (nopObserver) ObserveMatch(string, string) {}
func (nopObserver) ObserveSkip(string, string)  {}

// Processor classifies the extrinsics of a block for one account.
type Processor struct {
	account  model.AccountID
	chain    model.Chain
	matchers []Matcher
	observer Observer
	logger   *zap.Logger
}

// Option configures a Processor.
type Option func(*Processor)

// WithMatchers replaces the default catalogue.
func WithMatchers(matchers ...Matcher) Option {
	return func(p *Processor) {
		p.matchers = matchers
	}
}

func WithObserver(observer Observer) Option {
	return func(p *Processor) {
		if observer != nil {
			p.observer = observer
		}
	}
}

func NewProcessor(account model.AccountID, chain model.Chain, logger *zap.Logger, opts ...Option) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Processor{
		account:  account,
		chain:    chain,
		matchers: DefaultMatchers(),
		observer: nopObserver{},
		logger:   logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Processor) Account() model.AccountID {
	return p.account
}

func (p *Processor) Chain() model.Chain {
	return p.chain
}

// Process decodes one extrinsic and runs the catalogue over it. It never
// fails: decode errors, matcher errors and panics all yield nil.
func (p *Processor) Process(index uint32, data []byte, events []codec.EventRecord, factory codec.Factory) (result *model.ExtrinsicProcessingResult) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Debug("extrinsic skipped", zap.Uint32("index", index), zap.String("panic", fmt.Sprint(r)))
			p.observer.ObserveSkip(p.chain.ChainID, "panic")
			result = nil
		}
	}()

	ext, err := codec.DecodeExtrinsic(factory, data)
	if err != nil {
		p.logger.Debug("extrinsic skipped", zap.Uint32("index", index), zap.Error(err))
		p.observer.ObserveSkip(p.chain.ChainID, "decode")
		return nil
	}

	return p.ProcessDecoded(Input{Index: index, Extrinsic: ext, Events: events}, factory)
}

// ProcessDecoded runs the catalogue over an already decoded extrinsic.
func (p *Processor) ProcessDecoded(in Input, factory codec.Factory) *model.ExtrinsicProcessingResult {
	ctx := MatchContext{
		Account: p.account,
		Chain:   p.chain,
		Factory: factory,
		Assets:  assets.NewResolver(p.chain, factory),
		Logger:  p.logger,
	}

	for _, matcher := range p.matchers {
		result, err := matcher.Match(in, ctx)
		if err != nil {
			p.logger.Debug("matcher failed",
				zap.String("matcher", matcher.Name()),
				zap.Uint32("index", in.Index),
				zap.Error(err),
			)
			continue
		}
		if result != nil {
			p.observer.ObserveMatch(p.chain.ChainID, matcher.Name())
			return result
		}
	}
	return nil
}
