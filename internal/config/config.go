package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/gagliardetto/solana-go"
	"github.com/joho/godotenv"
)

var (
	SERUM_SWAP_PROGRAM = solana.MustPublicKeyFromBase58("22Y43yTVxuUkoRKdm9thyRhQ3SdgQS7c7kB6UNCiaczD")
	SERUM_DEX_V3       = solana.MustPublicKeyFromBase58("9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin")
	COMPUTE_PROGRAM    = solana.MustPublicKeyFromBase58("ComputeBudget111111111111111111111111111111")
	BLOXROUTE_MEMO     = solana.MustPublicKeyFromBase58("HQ2UUt18uJqKaQFJhgV9zaTdQxUZjNrsKFgoEDquBkcx")
	DEFAULT_UNIT_LIMIT = uint32(400000)
)

const BLOXROUTE_MEMO_TEXT = "Powered by bloXroute Trader Api"

const (
	MODE_DIRECT  = "direct"
	MODE_PROGRAM = "program"

	SENDER_RPC       = "rpc"
	SENDER_JITO      = "jito"
	SENDER_BLOXROUTE = "bloxroute"
	SENDER_ALL       = "all"
)

type GrpcConfig struct {
	Addr               string
	InsecureConnection bool
}

var (
	Payer           *solana.Wallet
	Authority       *solana.Wallet
	RouterProgramId solana.PublicKey
	SwapProgramId   solana.PublicKey
	DexProgramId    solana.PublicKey
	ExecutionMode   string
	Sender          string
	GRPC            GrpcConfig
	GrpcToken       string
	RedisAddr       string
	RedisPassword   string
	MySqlDsn        string
	MySqlDbName     string
	RpcHttpUrl      string
	RpcWsUrl        string
	BLOCKENGINE_URL string
	BloxRouteUrl    string
	BloxRouteToken  string
	ComputeLimit    uint32
	ComputePrice    uint64
	MinExchangeRate uint64
	StrictRate      bool
	Simulate        bool
	AwaitConfirm    bool
	FlagTracker     bool
	LogLevel        string
	LogFile         string
	Port            int
)

// InitEnv loads .env when present and reads the process environment.
func InitEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	return Load(os.Getenv)
}

// Load fills the package variables from getenv.
func Load(getenv func(string) string) error {
	pay, err := solana.WalletFromPrivateKeyBase58(getenv("PAYER_PRIVATE_KEY"))
	if err != nil {
		return errors.New("invalid PAYER_PRIVATE_KEY: " + err.Error())
	}
	Payer = pay

	Authority = nil
	if key := getenv("AUTHORITY_PRIVATE_KEY"); key != "" {
		Authority, err = solana.WalletFromPrivateKeyBase58(key)
		if err != nil {
			return errors.New("invalid AUTHORITY_PRIVATE_KEY: " + err.Error())
		}
	}

	RouterProgramId, err = publicKeyOr(getenv("ROUTER_PROGRAM_ID"), solana.PublicKey{})
	if err != nil {
		return errors.New("invalid ROUTER_PROGRAM_ID: " + err.Error())
	}

	SwapProgramId, err = publicKeyOr(getenv("SWAP_PROGRAM_ID"), SERUM_SWAP_PROGRAM)
	if err != nil {
		return errors.New("invalid SWAP_PROGRAM_ID: " + err.Error())
	}

	DexProgramId, err = publicKeyOr(getenv("DEX_PROGRAM_ID"), SERUM_DEX_V3)
	if err != nil {
		return errors.New("invalid DEX_PROGRAM_ID: " + err.Error())
	}

	ExecutionMode = stringOr(getenv("EXECUTION_MODE"), MODE_DIRECT)
	if ExecutionMode != MODE_DIRECT && ExecutionMode != MODE_PROGRAM {
		return errors.New("EXECUTION_MODE must be direct or program")
	}

	if ExecutionMode == MODE_PROGRAM && RouterProgramId.IsZero() {
		return errors.New("ROUTER_PROGRAM_ID is required in program mode")
	}

	Sender = stringOr(getenv("SENDER"), SENDER_RPC)
	switch Sender {
	case SENDER_RPC, SENDER_JITO, SENDER_BLOXROUTE, SENDER_ALL:
	default:
		return errors.New("SENDER must be one of rpc, jito, bloxroute, all")
	}

	GRPC = GrpcConfig{
		Addr:               getenv("GRPC_ENDPOINT"),
		InsecureConnection: getenv("GRPC_INSECURE") == "true",
	}
	GrpcToken = getenv("GRPC_TOKEN")
	RedisAddr = getenv("REDIS_ADDR")
	RedisPassword = getenv("REDIS_PASSWORD")
	MySqlDsn = getenv("MYSQL_DSN")
	MySqlDbName = stringOr(getenv("MYSQL_DB_NAME"), "router")
	RpcHttpUrl = getenv("RPC_HTTP_URL")
	RpcWsUrl = getenv("RPC_WS_URL")
	BLOCKENGINE_URL = getenv("BLOCKENGINE_URL")
	BloxRouteUrl = getenv("BLOXROUTE_URL")
	BloxRouteToken = getenv("BLOXROUTE_TOKEN")

	if RpcHttpUrl == "" {
		return errors.New("RPC_HTTP_URL is empty")
	}

	limit, err := uintOr(getenv("COMPUTE_UNIT_LIMIT"), uint64(DEFAULT_UNIT_LIMIT), 32)
	if err != nil {
		return errors.New("invalid COMPUTE_UNIT_LIMIT: " + err.Error())
	}
	ComputeLimit = uint32(limit)

	ComputePrice, err = uintOr(getenv("COMPUTE_UNIT_PRICE"), 0, 64)
	if err != nil {
		return errors.New("invalid COMPUTE_UNIT_PRICE: " + err.Error())
	}

	MinExchangeRate, err = uintOr(getenv("MIN_EXCHANGE_RATE"), 1, 64)
	if err != nil {
		return errors.New("invalid MIN_EXCHANGE_RATE: " + err.Error())
	}

	StrictRate = getenv("STRICT_EXCHANGE_RATE") == "true"
	if ExecutionMode == MODE_PROGRAM && (MinExchangeRate != 1 || StrictRate) {
		return errors.New("MIN_EXCHANGE_RATE and STRICT_EXCHANGE_RATE are only supported with EXECUTION_MODE=direct")
	}
	Simulate = getenv("SIMULATE") == "true"
	AwaitConfirm = getenv("AWAIT_CONFIRMATION") == "true"
	FlagTracker = getenv("FLAG_TRACKER") == "true"
	if FlagTracker && (RouterProgramId.IsZero() || GRPC.Addr == "") {
		return errors.New("FLAG_TRACKER requires ROUTER_PROGRAM_ID and GRPC_ENDPOINT")
	}
	LogLevel = stringOr(getenv("LOG_LEVEL"), "info")
	LogFile = getenv("LOG_FILE")

	port, err := uintOr(getenv("PORT"), 5000, 16)
	if err != nil {
		return errors.New("invalid PORT: " + err.Error())
	}
	Port = int(port)

	return nil
}

func stringOr(value string, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func uintOr(value string, fallback uint64, bits int) (uint64, error) {
	if value == "" {
		return fallback, nil
	}
	return strconv.ParseUint(value, 10, bits)
}

func publicKeyOr(value string, fallback solana.PublicKey) (solana.PublicKey, error) {
	if value == "" {
		return fallback, nil
	}
	return solana.PublicKeyFromBase58(value)
}
