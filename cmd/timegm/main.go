// Command timegm converts a GMT date and time to Unix seconds, or back with -d.
//
//	timegm 2000 3 1            # 951868800
//	timegm 1969 12 31 23 59 59 # -1
//	timegm -d 951868800        # 2000-03-01 00:00:00 = 951868800
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/ngrash/go-timegm/timegm"
)

var (
	decomposeFlag = flag.Bool("d", false, "Decompose Unix seconds into GMT fields instead")
)

func main() {
	if err := run(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func run() error {
	flag.Parse()
	args := flag.Args()

	if *decomposeFlag {
		if len(args) != 1 {
			return fmt.Errorf("Usage: timegm -d <seconds>")
		}
		sec, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("parsing seconds: %v", err)
		}
		tm := timegm.FromTime(time.Unix(sec, 0))
		fmt.Printf("%s = %d\n", format(tm), timegm.Timegm(tm))
		return nil
	}

	tm, err := parseFields(args)
	if err != nil {
		return err
	}
	fmt.Println(timegm.Timegm(tm))
	return nil
}

// parseFields reads YEAR MONTH DAY [HOUR MINUTE SECOND]. MONTH is 1-based.
func parseFields(args []string) (timegm.Tm, error) {
	if len(args) != 3 && len(args) != 6 {
		return timegm.Tm{}, fmt.Errorf("Usage: timegm <year> <month> <day> [<hour> <minute> <second>]")
	}
	names := []string{"year", "month", "day", "hour", "minute", "second"}
	var v [6]int
	for i, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil {
			return timegm.Tm{}, fmt.Errorf("parsing %s: %v", names[i], err)
		}
		v[i] = n
	}
	return timegm.Tm{
		Year:   v[0],
		Month:  v[1] - 1,
		Day:    v[2],
		Hour:   v[3],
		Minute: v[4],
		Second: v[5],
	}, nil
}

func format(tm timegm.Tm) string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d",
		tm.Year, tm.Month+1, tm.Day, tm.Hour, tm.Minute, tm.Second)
}
