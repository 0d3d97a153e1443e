package panarules

// singlePanaChart is the fixed single pana chart, twelve numbers per sum group.
// Digits are written ascending with 0 ranked after 9.
var singlePanaChart = [10][12]string{
	0: {"127", "136", "145", "190", "235", "280", "370", "389", "460", "479", "569", "578"},
	1: {"128", "137", "146", "236", "245", "290", "380", "470", "489", "560", "579", "678"},
	2: {"129", "138", "147", "156", "237", "246", "345", "390", "480", "570", "589", "679"},
	3: {"120", "139", "148", "157", "238", "247", "256", "346", "490", "580", "670", "689"},
	4: {"130", "149", "158", "167", "239", "248", "257", "347", "356", "590", "680", "789"},
	5: {"140", "159", "168", "230", "249", "258", "267", "348", "357", "456", "690", "780"},
	6: {"123", "150", "169", "178", "240", "259", "268", "349", "358", "367", "457", "790"},
	7: {"124", "160", "179", "250", "269", "278", "340", "359", "368", "458", "467", "890"},
	8: {"125", "134", "170", "189", "260", "279", "350", "369", "378", "459", "468", "567"},
	9: {"126", "135", "180", "234", "270", "289", "360", "379", "450", "469", "478", "568"},
}

var (
	singlePanaSet map[string]bool
	singlePanas   []string
	doublePanas   []string
	triplePanas   []string
)

func init() {
	singlePanaSet = make(map[string]bool, 120)
	singlePanas = make([]string, 0, 120)
	for _, group := range singlePanaChart {
		for _, n := range group {
			singlePanaSet[n] = true
			singlePanas = append(singlePanas, n)
		}
	}
	for i := 0; i < 1000; i++ {
		s := threeDigits(i)
		if IsValidDoublePana(s) {
			doublePanas = append(doublePanas, s)
		}
	}
	for d := 0; d < 10; d++ {
		c := byte('0' + d)
		triplePanas = append(triplePanas, string([]byte{c, c, c}))
	}
}

func threeDigits(n int) string {
	return string([]byte{byte('0' + n/100), byte('0' + n/10%10), byte('0' + n%10)})
}

// SinglePanas returns the 120 chart numbers in chart order.
func SinglePanas() []string {
	return append([]string(nil), singlePanas...)
}

// SinglePanaGroup returns the twelve chart numbers whose sum digit is g.
func SinglePanaGroup(g int) []string {
	if g < 0 || g > 9 {
		return nil
	}
	out := make([]string, 0, 12)
	out = append(out, singlePanaChart[g][:]...)
	return out
}

// DoublePanas returns every number accepted by IsValidDoublePana, ascending.
func DoublePanas() []string {
	return append([]string(nil), doublePanas...)
}

// TriplePanas returns 000 through 999 in steps of 111.
func TriplePanas() []string {
	return append([]string(nil), triplePanas...)
}
