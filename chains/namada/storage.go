package namada

import (
	"fmt"
	"strconv"
	"strings"

	errorsmod "cosmossdk.io/errors"
	transfertypes "github.com/cosmos/ibc-go/v8/modules/apps/transfer/types"
	clienttypes "github.com/cosmos/ibc-go/v8/modules/core/02-client/types"
	host "github.com/cosmos/ibc-go/v8/modules/core/24-host"
	ibcexported "github.com/cosmos/ibc-go/v8/modules/core/exported"
)

// Internal addresses owning the storage subspaces read by the relayer
const (
	IBCAddress        = "tnam1quqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqzdsxqp9"
	ParametersAddress = "tnam1qgqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqnh6rn"
	PoSAddress        = "tnam1qgqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqxsvsh"
	MultitokenAddress = "tnam1pyqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqk8mf"
)

const (
	keySeparator  = "/"
	addressPrefix = "#"

	keyClientsPrefix     = "clients"
	keyConnectionsPrefix = "connections"
	keyCounter           = "counter"
	keyBalance           = "balance"
	keyDenom             = "denom"
	keyIBCTokenPrefix    = "ibc"

	keyWrapperTxFees = "wrapper_tx_fees"
	keyEpochDuration = "epoch_duration"
	keyPoSParams     = "params"
)

// ErrNotThisPath is returned when a key has not the shape of the requested path kind.
// Prefix scans use it to skip entries.
var ErrNotThisPath = errorsmod.Register(ModuleName, 2, "the key is not for this path kind")

// Key is a storage key of the chain: an immutable sequence of segments
type Key struct {
	segs []string
}

// NewKey returns a key of the segments
func NewKey(segs ...string) Key {
	return Key{segs: append([]string(nil), segs...)}
}

// ParseKey parses a slash-delimited key
func ParseKey(s string) (Key, error) {
	if s == "" {
		return Key{}, fmt.Errorf("empty storage key")
	}
	segs := strings.Split(s, keySeparator)
	for i, seg := range segs {
		if seg == "" {
			return Key{}, fmt.Errorf("empty segment at %d in storage key %q", i, s)
		}
	}
	return Key{segs: segs}, nil
}

func mustParseKey(s string) Key {
	k, err := ParseKey(s)
	if err != nil {
		panic(err)
	}
	return k
}

func (k Key) String() string {
	return strings.Join(k.segs, keySeparator)
}

// Segments returns a copy of the segments
func (k Key) Segments() []string {
	return append([]string(nil), k.segs...)
}

func (k Key) Len() int {
	return len(k.segs)
}

// Push returns a new key with the segments appended
func (k Key) Push(segs ...string) Key {
	newSegs := make([]string, 0, len(k.segs)+len(segs))
	newSegs = append(newSegs, k.segs...)
	return Key{segs: append(newSegs, segs...)}
}

// HasPrefix returns true if all segments of prefix lead the key
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix.segs) > len(k.segs) {
		return false
	}
	for i, seg := range prefix.segs {
		if k.segs[i] != seg {
			return false
		}
	}
	return true
}

func (k Key) Equal(other Key) bool {
	return len(k.segs) == len(other.segs) && k.HasPrefix(other)
}

func addressSeg(addr string) string {
	return addressPrefix + addr
}

func parseAddressSeg(seg string) (string, bool) {
	if !strings.HasPrefix(seg, addressPrefix) || len(seg) == len(addressPrefix) {
		return "", false
	}
	return strings.TrimPrefix(seg, addressPrefix), true
}

// IBCKey returns the key of an ICS-24 path in the IBC subspace
func IBCKey(path string) (Key, error) {
	p, err := ParseKey(path)
	if err != nil {
		return Key{}, err
	}
	return NewKey(addressSeg(IBCAddress)).Push(p.segs...), nil
}

func ibcKey(segs ...string) Key {
	return NewKey(addressSeg(IBCAddress)).Push(segs...)
}

// ibcPath returns the segments of the ICS-24 path of an IBC key
func ibcPath(key Key) ([]string, error) {
	if key.Len() < 2 || key.segs[0] != addressSeg(IBCAddress) {
		return nil, errorsmod.Wrapf(ErrNotThisPath, "not an IBC key: %s", key)
	}
	return key.segs[1:], nil
}

func ClientStateKey(clientID string) Key {
	return ibcKey(keyClientsPrefix, clientID, host.KeyClientState)
}

func ConsensusStateKey(clientID string, height ibcexported.Height) Key {
	return ibcKey(keyClientsPrefix, clientID, host.KeyConsensusStatePrefix, height.String())
}

func ConnectionKey(connectionID string) Key {
	return ibcKey(keyConnectionsPrefix, connectionID)
}

func ChannelKey(portID, channelID string) Key {
	return ibcKey(host.KeyChannelEndPrefix, host.KeyPortPrefix, portID, host.KeyChannelPrefix, channelID)
}

func NextSequenceRecvKey(portID, channelID string) Key {
	return ibcKey(host.KeyNextSeqRecvPrefix, host.KeyPortPrefix, portID, host.KeyChannelPrefix, channelID)
}

func PacketCommitmentKey(portID, channelID string, sequence uint64) Key {
	return PacketCommitmentsPrefix(portID, channelID).Push(strconv.FormatUint(sequence, 10))
}

func PacketReceiptKey(portID, channelID string, sequence uint64) Key {
	return PacketReceiptsPrefix(portID, channelID).Push(strconv.FormatUint(sequence, 10))
}

func PacketAcknowledgementKey(portID, channelID string, sequence uint64) Key {
	return PacketAcknowledgementsPrefix(portID, channelID).Push(strconv.FormatUint(sequence, 10))
}

func packetPrefix(kind, portID, channelID string) Key {
	return ibcKey(kind, host.KeyPortPrefix, portID, host.KeyChannelPrefix, channelID, host.KeySequencePrefix)
}

func PacketCommitmentsPrefix(portID, channelID string) Key {
	return packetPrefix(host.KeyPacketCommitmentPrefix, portID, channelID)
}

func PacketReceiptsPrefix(portID, channelID string) Key {
	return packetPrefix(host.KeyPacketReceiptPrefix, portID, channelID)
}

func PacketAcknowledgementsPrefix(portID, channelID string) Key {
	return packetPrefix(host.KeyPacketAckPrefix, portID, channelID)
}

func ClientsPrefix() Key {
	return ibcKey(keyClientsPrefix)
}

func ClientPrefix(clientID string) Key {
	return ibcKey(keyClientsPrefix, clientID)
}

func ConnectionsPrefix() Key {
	return ibcKey(keyConnectionsPrefix)
}

func ChannelsPrefix() Key {
	return ibcKey(host.KeyChannelEndPrefix)
}

func ClientCounterKey() Key {
	return ibcKey(keyClientsPrefix, keyCounter)
}

func ConnectionCounterKey() Key {
	return ibcKey(keyConnectionsPrefix, keyCounter)
}

func ChannelCounterKey() Key {
	return ibcKey(host.KeyChannelEndPrefix, keyCounter)
}

// IsCounterKey returns true for the ID counters sharing a prefix with the IBC entities
func IsCounterKey(key Key) bool {
	return key.Equal(ClientCounterKey()) || key.Equal(ConnectionCounterKey()) || key.Equal(ChannelCounterKey())
}

// DenomKey returns the key of the full denom of an IBC token hash
func DenomKey(hash string) Key {
	return ibcKey(keyDenom, hash)
}

// ParseClientStateKey returns the client ID of a client state key
func ParseClientStateKey(key Key) (string, error) {
	path, err := ibcPath(key)
	if err != nil {
		return "", err
	}
	if len(path) != 3 || path[0] != keyClientsPrefix || path[2] != host.KeyClientState {
		return "", errorsmod.Wrapf(ErrNotThisPath, "not a client state key: %s", key)
	}
	return path[1], nil
}

// ParseConsensusStateKey returns the client ID and the height of a consensus state key
func ParseConsensusStateKey(key Key) (string, clienttypes.Height, error) {
	path, err := ibcPath(key)
	if err != nil {
		return "", clienttypes.Height{}, err
	}
	if len(path) != 4 || path[0] != keyClientsPrefix || path[2] != host.KeyConsensusStatePrefix {
		return "", clienttypes.Height{}, errorsmod.Wrapf(ErrNotThisPath, "not a consensus state key: %s", key)
	}
	height, err := clienttypes.ParseHeight(path[3])
	if err != nil {
		return "", clienttypes.Height{}, errorsmod.Wrapf(ErrNotThisPath, "invalid height in %s: %v", key, err)
	}
	return path[1], height, nil
}

// ParseConnectionKey returns the connection ID of a connection key
func ParseConnectionKey(key Key) (string, error) {
	path, err := ibcPath(key)
	if err != nil {
		return "", err
	}
	if len(path) != 2 || path[0] != keyConnectionsPrefix || path[1] == keyCounter {
		return "", errorsmod.Wrapf(ErrNotThisPath, "not a connection key: %s", key)
	}
	return path[1], nil
}

func parsePortChannel(key Key, kind string) (string, string, []string, error) {
	path, err := ibcPath(key)
	if err != nil {
		return "", "", nil, err
	}
	if len(path) < 5 || path[0] != kind || path[1] != host.KeyPortPrefix || path[3] != host.KeyChannelPrefix {
		return "", "", nil, errorsmod.Wrapf(ErrNotThisPath, "not a %s key: %s", kind, key)
	}
	return path[2], path[4], path[5:], nil
}

// ParseChannelKey returns the port ID and the channel ID of a channel end key
func ParseChannelKey(key Key) (string, string, error) {
	portID, channelID, rest, err := parsePortChannel(key, host.KeyChannelEndPrefix)
	if err != nil {
		return "", "", err
	} else if len(rest) != 0 {
		return "", "", errorsmod.Wrapf(ErrNotThisPath, "not a channel end key: %s", key)
	}
	return portID, channelID, nil
}

// ParseNextSequenceRecvKey returns the port ID and the channel ID of a next-sequence-receive key
func ParseNextSequenceRecvKey(key Key) (string, string, error) {
	portID, channelID, rest, err := parsePortChannel(key, host.KeyNextSeqRecvPrefix)
	if err != nil {
		return "", "", err
	} else if len(rest) != 0 {
		return "", "", errorsmod.Wrapf(ErrNotThisPath, "not a next sequence receive key: %s", key)
	}
	return portID, channelID, nil
}

func parsePacketKey(key Key, kind string) (string, string, uint64, error) {
	portID, channelID, rest, err := parsePortChannel(key, kind)
	if err != nil {
		return "", "", 0, err
	}
	if len(rest) != 2 || rest[0] != host.KeySequencePrefix {
		return "", "", 0, errorsmod.Wrapf(ErrNotThisPath, "not a %s key: %s", kind, key)
	}
	seq, err := strconv.ParseUint(rest[1], 10, 64)
	if err != nil {
		return "", "", 0, errorsmod.Wrapf(ErrNotThisPath, "invalid sequence in %s: %v", key, err)
	}
	return portID, channelID, seq, nil
}

// ParsePacketCommitmentKey returns the port ID, the channel ID and the sequence of a packet commitment key
func ParsePacketCommitmentKey(key Key) (string, string, uint64, error) {
	return parsePacketKey(key, host.KeyPacketCommitmentPrefix)
}

// ParsePacketReceiptKey returns the port ID, the channel ID and the sequence of a packet receipt key
func ParsePacketReceiptKey(key Key) (string, string, uint64, error) {
	return parsePacketKey(key, host.KeyPacketReceiptPrefix)
}

// ParsePacketAcknowledgementKey returns the port ID, the channel ID and the sequence of a packet acknowledgement key
func ParsePacketAcknowledgementKey(key Key) (string, string, uint64, error) {
	return parsePacketKey(key, host.KeyPacketAckPrefix)
}

// TokenPrefix returns the subspace of a token
func TokenPrefix(token string) Key {
	return NewKey(addressSeg(token))
}

// BalanceKey returns the key of the balance of owner in token
func BalanceKey(token, owner string) Key {
	return TokenPrefix(token).Push(keyBalance, addressSeg(owner))
}

// MultitokenBalanceKey returns the key of the balance of owner under a multitoken sub prefix
func MultitokenBalanceKey(prefix Key, owner string) Key {
	return prefix.Push(keyBalance, addressSeg(owner))
}

// IBCTokenPrefix returns the multitoken sub prefix of an IBC denom like "transfer/channel-0/uatom"
func IBCTokenPrefix(denom string) (Key, error) {
	trace := transfertypes.ParseDenomTrace(denom)
	if trace.Path == "" {
		return Key{}, fmt.Errorf("the denom has no trace path: %s", denom)
	}
	if err := trace.Validate(); err != nil {
		return Key{}, fmt.Errorf("invalid denom %s: %w", denom, err)
	}
	return NewKey(addressSeg(MultitokenAddress), keyIBCTokenPrefix, trace.Hash().String()), nil
}

// ParseBalanceKey returns the token and the owner of a balance key
func ParseBalanceKey(key Key) (string, string, error) {
	if key.Len() != 3 || key.segs[1] != keyBalance {
		return "", "", errorsmod.Wrapf(ErrNotThisPath, "not a balance key: %s", key)
	}
	token, ok1 := parseAddressSeg(key.segs[0])
	owner, ok2 := parseAddressSeg(key.segs[2])
	if !ok1 || !ok2 {
		return "", "", errorsmod.Wrapf(ErrNotThisPath, "not a balance key: %s", key)
	}
	return token, owner, nil
}

// ParseMultitokenBalanceKey returns the token, the sub prefix and the owner of a multitoken balance key
func ParseMultitokenBalanceKey(key Key) (string, Key, string, error) {
	n := key.Len()
	if n < 4 || key.segs[n-2] != keyBalance {
		return "", Key{}, "", errorsmod.Wrapf(ErrNotThisPath, "not a multitoken balance key: %s", key)
	}
	token, ok1 := parseAddressSeg(key.segs[0])
	owner, ok2 := parseAddressSeg(key.segs[n-1])
	if !ok1 || !ok2 {
		return "", Key{}, "", errorsmod.Wrapf(ErrNotThisPath, "not a multitoken balance key: %s", key)
	}
	return token, NewKey(key.segs[1 : n-2]...), owner, nil
}

func WrapperTxFeesKey() Key {
	return NewKey(addressSeg(ParametersAddress), keyWrapperTxFees)
}

func EpochDurationKey() Key {
	return NewKey(addressSeg(ParametersAddress), keyEpochDuration)
}

func PoSParamsKey() Key {
	return NewKey(addressSeg(PoSAddress), keyPoSParams)
}
