package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/nurpe/aquacred-registry/internal/model"
)

// WatchProjectRegistered streams ProjectRegistered events into sink. HTTP
// endpoints cannot push logs, so for them the registry polls new blocks.
func (r *Registry) WatchProjectRegistered(ctx context.Context, sink chan<- model.ProjectRegisteredEvent) (event.Subscription, error) {
	logs, sub, err := r.contract.WatchLogs(&bind.WatchOpts{Context: ctx}, eventProjectRegistered)
	if err != nil {
		if errors.Is(err, rpc.ErrNotificationsUnsupported) {
			return r.pollProjectRegistered(ctx, sink), nil
		}
		return nil, fmt.Errorf("subscribe %s: %w", eventProjectRegistered, err)
	}

	return event.NewSubscription(func(quit <-chan struct{}) error {
		defer sub.Unsubscribe()
		for {
			select {
			case log := <-logs:
				ev, err := r.decodeProjectRegistered(log)
				if err != nil {
					return err
				}
				select {
				case sink <- ev:
				case err := <-sub.Err():
					return err
				case <-quit:
					return nil
				}
			case err := <-sub.Err():
				return err
			case <-quit:
				return nil
			}
		}
	}), nil
}

func (r *Registry) pollProjectRegistered(ctx context.Context, sink chan<- model.ProjectRegisteredEvent) event.Subscription {
	topic := registryABI.Events[eventProjectRegistered].ID

	return event.NewSubscription(func(quit <-chan struct{}) error {
		next, err := r.client.BlockNumber(ctx)
		if err != nil {
			return fmt.Errorf("read head block: %w", err)
		}
		next++

		ticker := time.NewTicker(r.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-quit:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}

			head, err := r.client.BlockNumber(ctx)
			if err != nil {
				return fmt.Errorf("read head block: %w", err)
			}
			if head < next {
				continue
			}

			logs, err := r.client.FilterLogs(ctx, ethereum.FilterQuery{
				FromBlock: new(big.Int).SetUint64(next),
				ToBlock:   new(big.Int).SetUint64(head),
				Addresses: []common.Address{r.address},
				Topics:    [][]common.Hash{{topic}},
			})
			if err != nil {
				return fmt.Errorf("filter %s logs: %w", eventProjectRegistered, err)
			}

			for _, log := range logs {
				ev, err := r.decodeProjectRegistered(log)
				if err != nil {
					return err
				}
				select {
				case sink <- ev:
				case <-quit:
					return nil
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			next = head + 1
		}
	})
}

func (r *Registry) decodeProjectRegistered(log types.Log) (model.ProjectRegisteredEvent, error) {
	var decoded projectRegisteredLog
	if err := r.contract.UnpackLog(&decoded, eventProjectRegistered, log); err != nil {
		return model.ProjectRegisteredEvent{}, fmt.Errorf("decode %s: %w", eventProjectRegistered, err)
	}
	id, err := toUint64(decoded.ProjectId)
	if err != nil {
		return model.ProjectRegisteredEvent{}, fmt.Errorf("decode %s projectId: %w", eventProjectRegistered, err)
	}

	return model.ProjectRegisteredEvent{
		ProjectID:        id,
		ProjectName:      decoded.ProjectName,
		ImplementingBody: decoded.ImplementingBody,
		TxHash:           log.TxHash.Hex(),
		BlockNumber:      log.BlockNumber,
	}, nil
}
