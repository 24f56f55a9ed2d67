package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/eirikbell/circulate/catalog/sqlitestore"
	"github.com/eirikbell/circulate/config"
	"github.com/eirikbell/circulate/loans"
	"github.com/eirikbell/circulate/payments"
)

const usage = `usage: librarian <command> [args]

commands:
  add-book <title> <author> <isbn> <copies>
  borrow   <patron-id> <book-id>
  return   <patron-id> <book-id>
  report   <patron-id>
  pay      <patron-id> <book-id>
  refund   <transaction-id> <amount>
  verify   <transaction-id>
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration error:", err)
		os.Exit(1)
	}

	log := logrus.New()
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration error:", err)
		os.Exit(1)
	}
	log.SetLevel(level)

	store, err := sqlitestore.Open(cfg.SQLitePath, log)
	if err != nil {
		log.Fatal("cannot open catalog store: ", err)
	}
	defer store.Close()
	log.Debug("catalog store: ", cfg.SQLitePath)

	manager := loans.NewManager(store, log)
	gateway := payments.NewSimulatedGateway(payments.GatewayConfig{
		Ceiling:     cfg.GatewayCeiling,
		FailureRate: cfg.GatewayFailureRate,
		Latency:     cfg.GatewayLatency,
	})
	orchestrator := payments.NewOrchestrator(manager, gateway, log)

	if err := run(os.Args[1], os.Args[2:], store, manager, orchestrator, gateway); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(command string, args []string, store *sqlitestore.Store, manager *loans.Manager, orchestrator *payments.Orchestrator, gateway payments.Gateway) error {
	switch command {
	case "add-book":
		if len(args) != 4 {
			return fmt.Errorf("add-book needs <title> <author> <isbn> <copies>")
		}
		copies, err := strconv.Atoi(args[3])
		if err != nil {
			return fmt.Errorf("copies must be a number")
		}
		if !store.InsertBook(args[0], args[1], args[2], copies) {
			return fmt.Errorf("book was not added")
		}
		fmt.Printf("added %q to the catalog\n", args[0])
		return nil

	case "borrow":
		patronID, bookID, err := patronAndBook(args)
		if err != nil {
			return err
		}
		receipt, err := manager.Borrow(patronID, bookID)
		if err != nil {
			return err
		}
		fmt.Printf("borrowed %q, due %s\n", receipt.Title, receipt.DueDate.Format("2006-01-02"))
		return nil

	case "return":
		patronID, bookID, err := patronAndBook(args)
		if err != nil {
			return err
		}
		receipt, err := manager.Return(patronID, bookID)
		if err != nil {
			return err
		}
		if receipt.Fee.Amount > 0 {
			fmt.Printf("returned %q, %d day(s) late, fee $%.2f\n", receipt.Title, receipt.Fee.DaysOverdue, receipt.Fee.Amount)
		} else {
			fmt.Printf("returned %q, no late fee\n", receipt.Title)
		}
		return nil

	case "report":
		if len(args) != 1 {
			return fmt.Errorf("report needs <patron-id>")
		}
		report, err := manager.StatusReport(args[0])
		if err != nil {
			return err
		}
		return dumpJSON(report)

	case "pay":
		patronID, bookID, err := patronAndBook(args)
		if err != nil {
			return err
		}
		result, err := orchestrator.PayLateFees(patronID, bookID)
		if err != nil {
			return err
		}
		return dumpJSON(result)

	case "refund":
		if len(args) != 2 {
			return fmt.Errorf("refund needs <transaction-id> <amount>")
		}
		amount, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("amount must be a number")
		}
		message, err := orchestrator.RefundLateFeePayment(args[0], amount)
		if err != nil {
			return err
		}
		fmt.Println(message)
		return nil

	case "verify":
		if len(args) != 1 {
			return fmt.Errorf("verify needs <transaction-id>")
		}
		return dumpJSON(gateway.VerifyPaymentStatus(args[0]))

	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func patronAndBook(args []string) (string, int64, error) {
	if len(args) != 2 {
		return "", 0, fmt.Errorf("need <patron-id> <book-id>")
	}
	bookID, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("book id must be a number")
	}
	return args[0], bookID, nil
}

func dumpJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
