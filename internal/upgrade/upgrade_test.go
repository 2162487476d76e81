package upgrade

import (
	"context"
	"log/slog"
	"math/big"
	"testing"

	"github.com/stretchr/testify/suite"

	"attestgate/internal/events"
	governanceservice "attestgate/internal/governance/service"
	governancestore "attestgate/internal/governance/store"
	"attestgate/internal/payment/converter"
	"attestgate/internal/payment/memory"
	registryservice "attestgate/internal/registry/service"
	registrystore "attestgate/internal/registry/store"
	"attestgate/pkg/commitment"
	"attestgate/pkg/domain"
	"attestgate/pkg/platform/tx"
)

// =============================================================================
// Upgrade Coordinator Test Suite
// =============================================================================
// Upgrading must swap computation only: records and configuration written
// under the old logic stay observable unchanged under the new one.

type UpgradeSuite struct {
	suite.Suite
	gov         *governanceservice.Service
	records     *registrystore.MemoryStore
	registry    *registryservice.Service
	ledger      *memory.TokenLedger
	prices      *memory.PriceSource
	publisher   *events.MemoryPublisher
	coordinator *Coordinator

	admin  domain.Address
	token  domain.Address
	oracle domain.Address
}

func TestUpgradeSuite(t *testing.T) {
	suite.Run(t, new(UpgradeSuite))
}

func (s *UpgradeSuite) SetupTest() {
	ctx := context.Background()
	log := slog.New(slog.DiscardHandler)
	runner := tx.NewMutexRunner()
	s.publisher = events.NewMemoryPublisher()

	s.admin = addr(1)
	s.token = addr(5)
	s.oracle = addr(6)

	s.ledger = memory.NewTokenLedger()
	s.prices = memory.NewPriceSource()
	s.gov = governanceservice.New(governancestore.NewMemoryStore(), runner, s.ledger, s.prices, s.publisher, log)
	s.Require().NoError(s.gov.Initialize(ctx, s.admin, addr(3)))

	s.ledger.RegisterToken(s.token, 6)
	s.prices.SetOracle(s.oracle, big.NewInt(100_000_000), 8)
	s.Require().NoError(s.gov.AllowTokenPayment(ctx, s.admin, s.token, true, s.oracle))

	s.records = registrystore.NewMemoryStore()
	s.registry = registryservice.New(s.records, runner, s.gov, s.publisher, log)

	conv := converter.New(s.gov, s.ledger, s.prices)
	s.coordinator = NewCoordinator(s.gov, s.publisher, log)
	s.coordinator.Register(NewStandardLogic("v1", s.gov, conv))
	s.coordinator.Register(NewConstantFeeLogic("v2", big.NewInt(1337)))
}

func addr(b byte) domain.Address {
	var a domain.Address
	a[19] = b
	return a
}

func (s *UpgradeSuite) TestUpgrade() {
	ctx := context.Background()

	s.Run("first registered version is active", func() {
		s.Equal("v1", s.coordinator.ActiveVersion())

		fee, err := s.coordinator.FeeFor(ctx, s.token)
		s.Require().NoError(err)
		s.Equal("1000000", fee.String())
	})

	s.Run("admin only", func() {
		err := s.coordinator.Upgrade(ctx, addr(9), "v2")
		s.Require().Error(err)
		s.Contains(err.Error(), "admin only")
		s.Equal("v1", s.coordinator.ActiveVersion())
	})

	s.Run("unknown version rejected", func() {
		err := s.coordinator.Upgrade(ctx, s.admin, "v3")
		s.Require().Error(err)
		s.Contains(err.Error(), "unknown logic version")
	})

	s.Run("swaps the fee computation", func() {
		s.Require().NoError(s.coordinator.Upgrade(ctx, s.admin, "v2"))
		s.Equal("v2", s.coordinator.ActiveVersion())

		fee, err := s.coordinator.FeeFor(ctx, s.token)
		s.Require().NoError(err)
		s.Equal("1337", fee.String())
		s.Len(s.publisher.ByType(events.TypeLogicUpgraded), 1)
	})
}

func (s *UpgradeSuite) TestStateSurvivesUpgrade() {
	ctx := context.Background()

	walletKey := commitment.WalletKey(commitment.HashValue("sig"), addr(7))
	s.Require().NoError(s.registry.IngestOne(ctx, s.admin,
		walletKey, commitment.HashValue("attest"), commitment.HashValue("nonce"),
		commitment.HashValue("id"), domain.DataTypeKYC, 3))

	before, err := s.records.Get(ctx, walletKey, domain.DataTypeKYC)
	s.Require().NoError(err)
	cfgBefore, err := s.gov.Config(ctx)
	s.Require().NoError(err)

	s.Require().NoError(s.coordinator.Upgrade(ctx, s.admin, "v2"))

	after, err := s.records.Get(ctx, walletKey, domain.DataTypeKYC)
	s.Require().NoError(err)
	s.Equal(before, after)

	cfgAfter, err := s.gov.Config(ctx)
	s.Require().NoError(err)
	s.Equal(cfgBefore.Treasury, cfgAfter.Treasury)
	s.Equal(cfgBefore.TransactionCostUSD.String(), cfgAfter.TransactionCostUSD.String())
	s.Equal(cfgBefore.Tokens, cfgAfter.Tokens)

	// Governance keeps operating under the new logic.
	s.NoError(s.gov.SetTransactionCostUSD(ctx, s.admin, big.NewInt(2)))
}
