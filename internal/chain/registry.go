package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/nurpe/aquacred-registry/internal/config"
	"github.com/nurpe/aquacred-registry/internal/model"
)

// backend is the subset of *ethclient.Client the registry needs.
type backend interface {
	bind.ContractBackend
	bind.DeployBackend
	BlockNumber(ctx context.Context) (uint64, error)
	ChainID(ctx context.Context) (*big.Int, error)
	TransactionByHash(ctx context.Context, hash common.Hash) (*types.Transaction, bool, error)
	Close()
}

// Registry is a binding of the AquaCredRegistry contract on one endpoint.
type Registry struct {
	client       backend
	address      common.Address
	contract     *bind.BoundContract
	signer       *bind.TransactOpts
	pollInterval time.Duration
}

// projectTuple matches the AquaCredRegistry.Project tuple layout.
type projectTuple struct {
	ProjectId        *big.Int
	ProjectName      string
	Location         string
	ImplementingBody string
	AreaHectares     *big.Int
	StartDate        *big.Int
	ProjectType      string
	IsInitialized    bool
}

type projectRegisteredLog struct {
	ProjectId        *big.Int
	ProjectName      string
	ImplementingBody string
}

// Dial connects to cfg.RPCURL and binds the registry contract. A signer is
// prepared only when a private key is configured.
func Dial(ctx context.Context, cfg config.ChainConfig) (*Registry, error) {
	if strings.TrimSpace(cfg.RPCURL) == "" {
		return nil, ErrMissingEndpoint
	}
	if strings.TrimSpace(cfg.ContractAddress) == "" {
		return nil, ErrMissingContract
	}
	if !common.IsHexAddress(cfg.ContractAddress) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidContract, cfg.ContractAddress)
	}

	client, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("dial rpc endpoint: %w", err)
	}

	var signer *bind.TransactOpts
	if key := strings.TrimSpace(cfg.PrivateKey); key != "" {
		signer, err = newSigner(ctx, client, key, cfg.ChainID)
		if err != nil {
			client.Close()
			return nil, err
		}
	}

	return newRegistry(client, common.HexToAddress(cfg.ContractAddress), signer, cfg.PollInterval), nil
}

func newRegistry(client backend, address common.Address, signer *bind.TransactOpts, pollInterval time.Duration) *Registry {
	if pollInterval <= 0 {
		pollInterval = 4 * time.Second
	}
	return &Registry{
		client:       client,
		address:      address,
		contract:     bind.NewBoundContract(address, registryABI, client, client, client),
		signer:       signer,
		pollInterval: pollInterval,
	}
}

func newSigner(ctx context.Context, client backend, rawKey string, chainID int64) (*bind.TransactOpts, error) {
	key, err := parsePrivateKey(rawKey)
	if err != nil {
		return nil, err
	}

	id := big.NewInt(chainID)
	if chainID == 0 {
		id, err = client.ChainID(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetch chain id: %w", err)
		}
	}

	opts, err := bind.NewKeyedTransactorWithChainID(key, id)
	if err != nil {
		return nil, fmt.Errorf("build transactor: %w", err)
	}
	return opts, nil
}

func parsePrivateKey(raw string) (*ecdsa.PrivateKey, error) {
	raw = strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(raw), "0x"), "0X")
	key, err := crypto.HexToECDSA(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return key, nil
}

func (r *Registry) Address() common.Address {
	return r.address
}

// CanTransact reports whether state-changing calls can be signed.
func (r *Registry) CanTransact() bool {
	return r.signer != nil
}

func (r *Registry) Close() {
	r.client.Close()
}

// RegisterProject submits registerProject and blocks until the transaction is mined.
func (r *Registry) RegisterProject(ctx context.Context, draft model.ProjectDraft) (string, error) {
	if r.signer == nil {
		return "", ErrMissingSigner
	}
	if draft.StartDate < 0 {
		return "", fmt.Errorf("start date %d is before the unix epoch", draft.StartDate)
	}

	opts := *r.signer
	opts.Context = ctx

	tx, err := r.contract.Transact(&opts, methodRegisterProject,
		draft.ProjectName,
		draft.Location,
		draft.ImplementingBody,
		new(big.Int).SetUint64(draft.AreaHectares),
		big.NewInt(draft.StartDate),
		draft.ProjectType,
	)
	if err != nil {
		return "", fmt.Errorf("send registerProject: %w", err)
	}

	receipt, err := bind.WaitMined(ctx, r.client, tx)
	if err != nil {
		return tx.Hash().Hex(), fmt.Errorf("wait for %s: %w", tx.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return tx.Hash().Hex(), fmt.Errorf("%w: %s", ErrReverted, tx.Hash().Hex())
	}
	return tx.Hash().Hex(), nil
}

func (r *Registry) GetProject(ctx context.Context, id uint64) (model.Project, error) {
	var out []interface{}
	err := r.contract.Call(&bind.CallOpts{Context: ctx}, &out, methodGetProject, new(big.Int).SetUint64(id))
	if err != nil {
		return model.Project{}, fmt.Errorf("call getProject(%d): %w", id, err)
	}
	if len(out) != 1 {
		return model.Project{}, fmt.Errorf("getProject(%d): unexpected output count %d", id, len(out))
	}

	tuple := *abi.ConvertType(out[0], new(projectTuple)).(*projectTuple)
	return tuple.toModel()
}

// Projects reads the public projects mapping getter.
func (r *Registry) Projects(ctx context.Context, id uint64) (model.Project, error) {
	var out []interface{}
	err := r.contract.Call(&bind.CallOpts{Context: ctx}, &out, methodProjects, new(big.Int).SetUint64(id))
	if err != nil {
		return model.Project{}, fmt.Errorf("call projects(%d): %w", id, err)
	}
	if len(out) != 8 {
		return model.Project{}, fmt.Errorf("projects(%d): unexpected output count %d", id, len(out))
	}

	tuple := projectTuple{
		ProjectId:        *abi.ConvertType(out[0], new(*big.Int)).(**big.Int),
		ProjectName:      *abi.ConvertType(out[1], new(string)).(*string),
		Location:         *abi.ConvertType(out[2], new(string)).(*string),
		ImplementingBody: *abi.ConvertType(out[3], new(string)).(*string),
		AreaHectares:     *abi.ConvertType(out[4], new(*big.Int)).(**big.Int),
		StartDate:        *abi.ConvertType(out[5], new(*big.Int)).(**big.Int),
		ProjectType:      *abi.ConvertType(out[6], new(string)).(*string),
		IsInitialized:    *abi.ConvertType(out[7], new(bool)).(*bool),
	}
	return tuple.toModel()
}

func (r *Registry) GetProjectCount(ctx context.Context) (uint64, error) {
	return r.callCounter(ctx, methodGetProjectCount)
}

func (r *Registry) ProjectCounter(ctx context.Context) (uint64, error) {
	return r.callCounter(ctx, methodProjectCounter)
}

func (r *Registry) callCounter(ctx context.Context, method string) (uint64, error) {
	var out []interface{}
	if err := r.contract.Call(&bind.CallOpts{Context: ctx}, &out, method); err != nil {
		return 0, fmt.Errorf("call %s: %w", method, err)
	}
	if len(out) != 1 {
		return 0, fmt.Errorf("%s: unexpected output count %d", method, len(out))
	}
	return toUint64(*abi.ConvertType(out[0], new(*big.Int)).(**big.Int))
}

// Transaction describes a transaction and, once mined, its receipt and block time.
func (r *Registry) Transaction(ctx context.Context, hash common.Hash) (*model.TransactionStatus, error) {
	tx, pending, err := r.client.TransactionByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return nil, fmt.Errorf("%w: %s", ErrTransactionNotFound, hash.Hex())
		}
		return nil, fmt.Errorf("lookup transaction: %w", err)
	}

	status := &model.TransactionStatus{
		Hash:   hash.Hex(),
		Status: model.TransactionPending,
	}
	if to := tx.To(); to != nil {
		status.To = to.Hex()
	}
	if from, err := types.Sender(types.LatestSignerForChainID(tx.ChainId()), tx); err == nil {
		status.From = from.Hex()
	}
	if pending {
		return status, nil
	}

	receipt, err := r.client.TransactionReceipt(ctx, hash)
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return status, nil
		}
		return nil, fmt.Errorf("lookup receipt: %w", err)
	}

	status.GasUsed = receipt.GasUsed
	if receipt.BlockNumber != nil {
		status.BlockNumber = receipt.BlockNumber.Uint64()
		header, err := r.client.HeaderByNumber(ctx, receipt.BlockNumber)
		if err != nil {
			return nil, fmt.Errorf("lookup block %s: %w", receipt.BlockNumber, err)
		}
		minedAt := time.Unix(int64(header.Time), 0).UTC()
		status.Timestamp = &minedAt
	}
	if receipt.Status == types.ReceiptStatusSuccessful {
		status.Status = model.TransactionSuccess
	} else {
		status.Status = model.TransactionFailed
	}
	return status, nil
}

func (t projectTuple) toModel() (model.Project, error) {
	id, err := toUint64(t.ProjectId)
	if err != nil {
		return model.Project{}, fmt.Errorf("projectId: %w", err)
	}
	area, err := toUint64(t.AreaHectares)
	if err != nil {
		return model.Project{}, fmt.Errorf("areaHectares: %w", err)
	}
	if t.StartDate == nil || !t.StartDate.IsInt64() {
		return model.Project{}, fmt.Errorf("startDate: value %v out of range", t.StartDate)
	}

	return model.Project{
		ProjectID:        id,
		ProjectName:      t.ProjectName,
		Location:         t.Location,
		ImplementingBody: t.ImplementingBody,
		AreaHectares:     area,
		StartDate:        t.StartDate.Int64(),
		ProjectType:      t.ProjectType,
		IsInitialized:    t.IsInitialized,
	}, nil
}

func toUint64(v *big.Int) (uint64, error) {
	if v == nil {
		return 0, nil
	}
	if !v.IsUint64() {
		return 0, fmt.Errorf("value %s out of range", v)
	}
	return v.Uint64(), nil
}
